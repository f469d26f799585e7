package normalize

import (
	"strconv"
	"strings"

	"github.com/nao1215/atlasharvest/internal/model"
)

// QuotaStatus returns the normalized quota status of a record.
//
// Rules, first match wins:
//  1. a status ending in "#" loses the marker ("Doldu#" -> "Doldu");
//  2. an empty status with max_rank[0] == "Dolmadı" is "Dolmadı";
//  3. an empty status with both quota slots present compares the leading
//     integers (text before "+") of filled_quota[0] and total_quota[0]:
//     filled >= total is "Doldu", otherwise "Dolmadı". A filled slot
//     starting with "Doldu" is "Doldu", and unparsable numbers default to
//     "Doldu";
//  4. anything else is returned unchanged.
func QuotaStatus(raw string, maxRank, totalQuota, filledQuota []string) string {
	if strings.HasSuffix(raw, "#") {
		return strings.TrimRight(raw, "#")
	}
	if raw != "" {
		return raw
	}
	if len(maxRank) > 0 && maxRank[0] == model.QuotaNotFilled {
		return model.QuotaNotFilled
	}
	if len(totalQuota) == 0 || len(filledQuota) == 0 {
		return raw
	}

	total, err := leadingInt(totalQuota[0])
	if err != nil {
		return model.QuotaFilled
	}
	if strings.HasPrefix(filledQuota[0], model.QuotaFilled) {
		return model.QuotaFilled
	}
	filled, err := leadingInt(filledQuota[0])
	if err != nil {
		return model.QuotaFilled
	}
	if filled >= total {
		return model.QuotaFilled
	}
	return model.QuotaNotFilled
}

// leadingInt parses the integer before the first "+" of s.
func leadingInt(s string) (int, error) {
	head, _, _ := strings.Cut(s, "+")
	return strconv.Atoi(strings.TrimSpace(head))
}

// SplitAttributes splits tokens that span a ")...(" boundary.
//
// A token such as "İngilizce)KKTC Uyruklu (4 Yıllık" becomes the parts
// before ")", between ")" and "(", and after "(" up to the next "(" with any
// ")" removed.
// Empty parts are dropped and the parts replace the token in place. Other
// tokens are kept as they are.
func SplitAttributes(attrs []string) []string {
	out := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		before, rest, ok := strings.Cut(attr, ")")
		if !ok {
			out = append(out, attr)
			continue
		}
		middle, after, ok := strings.Cut(rest, "(")
		if !ok {
			out = append(out, attr)
			continue
		}

		// Only the segment up to the next "(" is kept as the last part.
		after, _, _ = strings.Cut(after, "(")

		for _, part := range []string{before, middle, strings.ReplaceAll(after, ")", "")} {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Record returns a normalized copy of r.
func Record(r model.Record) model.Record {
	n := r.Clone()
	n.QuotaStatus = QuotaStatus(r.QuotaStatus, r.MaxRank, r.TotalQuota, r.FilledQuota)
	n.Attributes = SplitAttributes(r.Attributes)
	return n
}
