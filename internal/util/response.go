package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

// ErrorDetails attaches the underlying cause; callers only use it outside production.
func ErrorDetails(message, details string) Envelope {
	env := Error(message)
	if details != "" {
		env["details"] = details
	}
	return env
}

func Message(message string) Envelope {
	return Envelope{"message": message}
}
