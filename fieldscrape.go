// Package fieldscrape extracts structured records from web pages. It fetches
// and normalizes a page, asks a language-model service to pull out the fields
// a user names, and caches both the raw content and the structured result so
// the record can be viewed or exported later without scraping again.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, gemini/).
package fieldscrape
