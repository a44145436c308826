// Package sitecontent provides the content library behind the marketing site
// API: multilingual records (news, products, sliders, team members, usage
// areas, FAQs, certificates, gallery images, AI model entries) with pluggable
// repository and blob storage backends.
//
// Records hold text fields in up to three languages (en, az, ru). Reads go
// through Resolve, which projects a record onto one language with fallback.
// Writes may request machine translation, in which case the service asks a
// Translator for the missing language variants before persisting.
//
// Field Formats
//
// A base field (e.g. "title") is either Legacy, a single untranslated value
// kept from before multilingual support, or Multilingual, a per-language
// map. Presence of any language key makes a field multilingual; the value may
// still be empty. Multilingual always wins over a legacy value stored next
// to it.
package sitecontent
