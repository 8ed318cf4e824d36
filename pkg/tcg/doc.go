// Package tcg is the site-facing collaborator: it fetches pages from the
// card database website and parses them into typed records.
//
// Three page shapes exist:
//
//   - the card list page, carrying one productsList-Item anchor per
//     expansion with the expansion code in its href
//   - paginated card search results, one cardlist-Result_Item element
//     per card with the card number in its card attribute
//   - card detail pages, a cardlist-Info container of dt/dd attribute
//     pairs plus name, image, and ability text
//
// Parsed detail fields become the opaque payload of a models.CardRecord;
// the scheduling and persistence layers never depend on their shape.
// The client applies no timeout of its own — callers bound each request
// through the context.
package tcg
