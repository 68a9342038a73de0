package flashcard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResponse is returned for a response outside again/hard/good/easy.
var ErrInvalidResponse = errors.New("flashcard: invalid response")

// Response is the learner's self-assessment after hearing a card.
type Response int

const (
	Again Response = iota + 1
	Hard
	Good
	Easy
)

var responseNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

// Responses lists every valid response in order.
var Responses = []Response{Again, Hard, Good, Easy}

func (r Response) IsValid() bool {
	return r >= Again && r <= Easy
}

func (r Response) String() string {
	if r.IsValid() {
		return responseNames[r]
	}
	return fmt.Sprintf("Response(%d)", int(r))
}

// ParseResponse accepts the response names case-insensitively.
func ParseResponse(s string) (Response, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, r := range Responses {
		if responseNames[r] == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidResponse, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Response) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResponse, int(r))
	}
	return []byte(responseNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Response) UnmarshalText(b []byte) error {
	parsed, err := ParseResponse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
