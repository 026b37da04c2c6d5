package phrase

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names one of the three announcement fragments a receiver speaks.
type Kind string

const (
	// KindTicket calls the ticket number ("patient number N").
	KindTicket Kind = "ticket"
	// KindRoom directs the caller to an examination room.
	KindRoom Kind = "room"
	// KindReception directs the caller to the reception desk.
	KindReception Kind = "reception"
)

// Messages holds the phrase templates for one language. The {number}
// placeholder is replaced with the ticket or room number.
type Messages struct {
	Ticket    string `yaml:"ticket"`
	Room      string `yaml:"room"`
	Reception string `yaml:"reception"`
}

// Catalog maps language tags to phrase templates.
type Catalog map[string]Messages

// Default returns the built-in catalog covering the three languages the
// receiver clients ship audio for.
func Default() Catalog {
	return Catalog{
		"japanese": {
			Ticket:    "呼び出し番号 {number}番のかた",
			Room:      "{number}番診察室へお越しください。",
			Reception: "受付にお越しください。",
		},
		"english": {
			Ticket:    "Patient number {number},",
			Room:      "please come to examination room {number}.",
			Reception: "please come to the reception desk.",
		},
		"chinese": {
			Ticket:    "{number}號的病人，",
			Room:      "請前往{number}號診療室。",
			Reception: "請到掛號處。",
		},
	}
}

// LoadFile reads a YAML catalog and merges it over the defaults, so a
// deployment can override a single language without restating the rest.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides Catalog
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}

	catalog := Default()
	for lang, msgs := range overrides {
		base := catalog[lang]
		if msgs.Ticket != "" {
			base.Ticket = msgs.Ticket
		}
		if msgs.Room != "" {
			base.Room = msgs.Room
		}
		if msgs.Reception != "" {
			base.Reception = msgs.Reception
		}
		catalog[lang] = base
	}
	return catalog, nil
}

// ErrUnknownLanguage indicates the catalog has no templates for the tag.
var ErrUnknownLanguage = errors.New("phrase.unknown_language")

// Languages returns the language tags present in the catalog.
func (c Catalog) Languages() []string {
	langs := make([]string, 0, len(c))
	for lang := range c {
		langs = append(langs, lang)
	}
	return langs
}

// Render produces the spoken text for one fragment, substituting the
// {number} placeholder when present.
func (c Catalog) Render(language string, kind Kind, number string) (string, error) {
	msgs, ok := c[language]
	if !ok {
		return "", ErrUnknownLanguage
	}

	var tmpl string
	switch kind {
	case KindTicket:
		tmpl = msgs.Ticket
	case KindRoom:
		tmpl = msgs.Room
	case KindReception:
		tmpl = msgs.Reception
	default:
		return "", errors.New("phrase.unknown_kind")
	}

	return strings.ReplaceAll(tmpl, "{number}", number), nil
}
