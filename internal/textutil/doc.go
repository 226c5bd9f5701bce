// Package textutil provides text helpers for matching remote objects by
// their display names.
//
// Names coming back from the API are user-entered and may arrive in
// different Unicode normal forms depending on the client that wrote them.
// All by-name lookups in this project compare NFC-normalized strings so
// that visually identical names always match.
package textutil
