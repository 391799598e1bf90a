package prompt

// truncate caps s at n runes. Cutting on a byte index could split a
// multi-byte character and leave invalid UTF-8 in the prompt.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
