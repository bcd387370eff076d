package textures

import (
	"fmt"
	"strings"
)

// Kind is a closed set of texture categories. Adding a new one requires
// a display name and a file extension below.
type Kind int

const (
	Skin Kind = iota
	Cape
)

var kinds = []Kind{Skin, Cape}

func AllKinds() []Kind {
	result := make([]Kind, len(kinds))
	copy(result, kinds)

	return result
}

func ParseKind(value string) (Kind, error) {
	switch strings.ToUpper(value) {
	case "SKIN":
		return Skin, nil
	case "CAPE":
		return Cape, nil
	}

	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}

	return 0, fmt.Errorf("invalid texture kind %q, valid kinds are: %s", value, strings.Join(names, ", "))
}

func (k Kind) String() string {
	switch k {
	case Skin:
		return "SKIN"
	case Cape:
		return "CAPE"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Extension() string {
	switch k {
	case Skin, Cape:
		return "png"
	}

	return ""
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
