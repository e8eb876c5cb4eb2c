// Package extractors converts raw upload bytes into plain text.
//
// Each extractor declares the MIME types it handles; the Registry
// routes by MIME type and falls back to plain text decoding for
// anything unrecognised, mirroring how browsers upload files with
// loose or missing content types.
package extractors
