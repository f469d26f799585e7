// Package htmldoc is a static-markup implementation of provider.Document.
//
// Pages are fetched through a Fetcher and parsed with goquery. There is no
// script engine; actions are mapped onto requests instead:
//
//   - Click and Invoke follow the element's href or data-href attribute,
//     resolved against the current page URL.
//   - SelectOption re-requests the current page with the select's name set
//     as a query parameter to the chosen value.
//
// An element is not interactable when it carries the disabled or hidden
// attribute, has class "disabled", or when it or one of its ancestors is
// styled display:none.
//
// HTTPFetcher reads live pages with resty. StaticFetcher serves pages from
// memory and is what tests and offline replays use.
//
// Script-built pages are out of reach: HTTPFetcher only sees the markup the
// server sends, so it suits server-rendered mirrors of the listing, not the
// live JavaScript table.
package htmldoc
