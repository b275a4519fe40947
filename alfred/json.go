package alfred

import (
	"bufio"
	"encoding/json"
	"io"
)

type jsonDocument struct {
	Items []jsonItem `json:"items"`
}

type jsonItem struct {
	Title        string             `json:"title"`
	Subtitle     *string            `json:"subtitle,omitempty"`
	Icon         *jsonIcon          `json:"icon,omitempty"`
	UID          *string            `json:"uid,omitempty"`
	Arg          *string            `json:"arg,omitempty"`
	Type         string             `json:"type,omitempty"`
	Valid        *bool              `json:"valid,omitempty"`
	Autocomplete *string            `json:"autocomplete,omitempty"`
	Text         *jsonText          `json:"text,omitempty"`
	QuicklookURL *string            `json:"quicklookurl,omitempty"`
	Mods         map[string]jsonMod `json:"mods,omitempty"`
}

type jsonIcon struct {
	Type string `json:"type,omitempty"`
	Path string `json:"path"`
}

type jsonText struct {
	Copy      *string `json:"copy,omitempty"`
	LargeType *string `json:"largetype,omitempty"`
}

type jsonMod struct {
	Subtitle *string   `json:"subtitle,omitempty"`
	Arg      *string   `json:"arg,omitempty"`
	Valid    *bool     `json:"valid,omitempty"`
	Icon     *jsonIcon `json:"icon,omitempty"`
}

func toJSONIcon(icon *Icon) *jsonIcon {
	if icon == nil {
		return nil
	}
	return &jsonIcon{Type: icon.typeName(), Path: icon.Value}
}

func toJSONItem(it Item) jsonItem {
	out := jsonItem{
		Title:        it.Title,
		Subtitle:     it.Subtitle,
		Icon:         toJSONIcon(it.Icon),
		UID:          it.UID,
		Arg:          it.Arg,
		Autocomplete: it.Autocomplete,
		QuicklookURL: it.QuicklookURL,
	}
	if it.Type != TypeDefault {
		out.Type = it.Type.String()
	}
	// Alfred assumes valid unless told otherwise.
	if !it.Valid {
		f := false
		out.Valid = &f
	}
	if it.TextCopy != nil || it.TextLargeType != nil {
		out.Text = &jsonText{Copy: it.TextCopy, LargeType: it.TextLargeType}
	}
	for _, m := range AllModifiers {
		d, ok := it.Modifiers[m]
		if !ok || d == nil {
			continue
		}
		if out.Mods == nil {
			out.Mods = make(map[string]jsonMod, len(it.Modifiers))
		}
		out.Mods[m.Key()] = jsonMod{
			Subtitle: d.Subtitle,
			Arg:      d.Arg,
			Valid:    d.Valid,
			Icon:     toJSONIcon(d.Icon),
		}
	}
	return out
}

// MarshalJSON encodes the item the way Alfred's script filter JSON expects,
// omitting every unset field.
func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSONItem(it))
}

// WriteJSON writes a complete {"items": [...]} document to w and flushes it.
func WriteJSON(w io.Writer, items []Item) error {
	doc := jsonDocument{Items: make([]jsonItem, 0, len(items))}
	for _, it := range items {
		doc.Items = append(doc.Items, toJSONItem(it))
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return bw.Flush()
}
