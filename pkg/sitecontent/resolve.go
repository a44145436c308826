package sitecontent

// Resolve projects record onto lang. An unsupported lang resolves as
// DefaultLanguage. Resolution never fails; a field with no usable value
// resolves to "".
func Resolve(record *Record, lang Language) *Resolved {
	if !lang.IsValid() {
		lang = DefaultLanguage
	}

	out := &Resolved{
		ID:         record.ID,
		Kind:       record.Kind,
		Language:   lang,
		Fields:     make(map[string]string, len(record.Fields)),
		Attributes: make(map[string]any, len(record.Attributes)),
		CreatedBy:  record.CreatedBy,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	for k, v := range record.Attributes {
		out.Attributes[k] = v
	}
	for name, f := range record.Fields {
		out.Fields[name] = ResolveField(f, lang)
	}
	return out
}

// ResolveAll resolves each record in order.
func ResolveAll(records []*Record, lang Language) []*Resolved {
	out := make([]*Resolved, 0, len(records))
	for _, r := range records {
		out = append(out, Resolve(r, lang))
	}
	return out
}

// ResolveField picks the value shown for f in lang.
//
// A requested value that is byte-identical to the English value is taken as
// an untranslated copy, and a genuinely different variant is preferred. Only
// the English value is used for that comparison.
func ResolveField(f Field, lang Language) string {
	if f.Format != FormatMultilingual {
		return f.Legacy
	}
	if !lang.IsValid() {
		lang = DefaultLanguage
	}

	requested := f.Values[lang]
	english := f.Values[LanguageEN]

	if requested != "" {
		if lang == LanguageEN || requested != english {
			return requested
		}
		for _, alt := range Languages {
			if alt == lang {
				continue
			}
			if v := f.Values[alt]; v != "" && v != english {
				return v
			}
		}
		return english
	}

	for _, alt := range Languages {
		if alt == lang {
			continue
		}
		if v := f.Values[alt]; v != "" {
			return v
		}
	}
	return ""
}

// FirstAvailable returns the first non-empty value in priority order. A
// legacy value counts as English.
func FirstAvailable(f Field) (Language, string) {
	for _, lang := range Languages {
		if v := f.Values[lang]; v != "" {
			return lang, v
		}
		if lang == LanguageEN && f.Legacy != "" {
			return LanguageEN, f.Legacy
		}
	}
	return "", ""
}
