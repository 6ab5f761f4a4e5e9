package stringsplitter

// Split scans the whole text in one terminal pass and returns every
// part. Like strings.Split, it never returns an empty slice: text
// without any marker, including the empty string, comes back as a
// single part.
func Split(text string, cfg Config) ([]string, error) {
	r, err := cfg.compile()
	if err != nil {
		return nil, err
	}
	parts, _ := r.appendParts(make([]string, 0, 8), []byte(text), false)
	return parts, nil
}
