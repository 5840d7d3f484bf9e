package llm

import "strings"

// KeyState tracks which API key is active. Rotation is explicit and the active
// key stays selected until it is exhausted.
type KeyState struct {
	keys   []string
	active int
}

// NewKeyState keeps the non-blank keys in order and starts at the first one.
func NewKeyState(keys []string) (*KeyState, error) {
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			cleaned = append(cleaned, key)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoAPIKeys
	}
	return &KeyState{keys: cleaned}, nil
}

// Active returns the key in use.
func (s *KeyState) Active() string {
	return s.keys[s.active]
}

// Index returns the position of the active key.
func (s *KeyState) Index() int {
	return s.active
}

// Len returns the number of keys.
func (s *KeyState) Len() int {
	return len(s.keys)
}

// Rotate advances to the next key, wrapping around, and returns the new index.
// With two keys this toggles between them.
func (s *KeyState) Rotate() int {
	s.active = (s.active + 1) % len(s.keys)
	return s.active
}
