// Package alfred models Alfred script filter results and writes them in the
// JSON format (Alfred 3 and later) or the legacy XML format.
package alfred

// ItemType tells Alfred how to treat an item's arg.
type ItemType int

const (
	TypeDefault ItemType = iota
	// TypeFile makes Alfred treat the item as a file and check it exists.
	TypeFile
	// TypeFileSkipCheck treats the item as a file without the existence check.
	TypeFileSkipCheck
)

func (t ItemType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeFileSkipCheck:
		return "file:skipcheck"
	default:
		return "default"
	}
}

// Modifier is a key that selects an alternate action. Alfred does not
// support combinations.
type Modifier int

const (
	Command Modifier = iota
	Option
	Control
	Shift
	Fn
)

// AllModifiers lists the modifiers in output order.
var AllModifiers = []Modifier{Command, Option, Control, Shift, Fn}

// Key returns the name Alfred uses for the modifier.
func (m Modifier) Key() string {
	switch m {
	case Command:
		return "cmd"
	case Option:
		return "alt"
	case Control:
		return "ctrl"
	case Shift:
		return "shift"
	case Fn:
		return "fn"
	default:
		return ""
	}
}

func (m Modifier) String() string {
	return m.Key()
}

// IconKind selects how Icon.Value is interpreted.
type IconKind int

const (
	// IconPath is a path to an image file.
	IconPath IconKind = iota
	// IconFile uses the icon of the file at the path.
	IconFile
	// IconFileType uses the icon for a UTI such as "public.folder".
	IconFileType
)

// Icon is an item or modifier icon.
type Icon struct {
	Kind  IconKind
	Value string
}

// PathIcon returns an icon loaded from an image path.
func PathIcon(path string) *Icon { return &Icon{Kind: IconPath, Value: path} }

// FileIcon returns the icon of the file at path.
func FileIcon(path string) *Icon { return &Icon{Kind: IconFile, Value: path} }

// FileTypeIcon returns the icon for a uniform type identifier.
func FileTypeIcon(uti string) *Icon { return &Icon{Kind: IconFileType, Value: uti} }

func (i Icon) typeName() string {
	switch i.Kind {
	case IconFile:
		return "fileicon"
	case IconFileType:
		return "filetype"
	default:
		return ""
	}
}

// ModifierData overrides item fields while a modifier is held.
type ModifierData struct {
	Subtitle *string
	Arg      *string
	Valid    *bool
	Icon     *Icon
}

func (d *ModifierData) empty() bool {
	return d.Subtitle == nil && d.Arg == nil && d.Valid == nil && d.Icon == nil
}

// Item is a single script filter result. Optional fields are nil when unset.
type Item struct {
	Title    string
	Subtitle *string
	Icon     *Icon

	UID  *string
	Arg  *string
	Type ItemType

	Valid         bool
	Autocomplete  *string
	TextCopy      *string
	TextLargeType *string
	QuicklookURL  *string

	Modifiers map[Modifier]*ModifierData
}

// NewItem returns a valid item with only a title.
func NewItem(title string) Item {
	return Item{Title: title, Valid: true}
}

func strPtr(s string) *string { return &s }

// Builder assembles an Item with chained setters.
type Builder struct {
	item Item
}

// NewBuilder starts an item with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{item: NewItem(title)}
}

// Item returns the built item. The builder may keep being used; the returned
// item does not share modifier data with it.
func (b *Builder) Item() Item {
	it := b.item
	if b.item.Modifiers != nil {
		it.Modifiers = make(map[Modifier]*ModifierData, len(b.item.Modifiers))
		for m, d := range b.item.Modifiers {
			cp := *d
			it.Modifiers[m] = &cp
		}
	}
	return it
}

func (b *Builder) mod(m Modifier) *ModifierData {
	if b.item.Modifiers == nil {
		b.item.Modifiers = make(map[Modifier]*ModifierData)
	}
	d, ok := b.item.Modifiers[m]
	if !ok {
		d = &ModifierData{}
		b.item.Modifiers[m] = d
	}
	return d
}

// clearMod applies clear to m's data and drops the modifier once empty.
func (b *Builder) clearMod(m Modifier, clear func(*ModifierData)) {
	d, ok := b.item.Modifiers[m]
	if !ok {
		return
	}
	clear(d)
	if d.empty() {
		delete(b.item.Modifiers, m)
	}
}

func (b *Builder) Title(title string) *Builder {
	b.item.Title = title
	return b
}

func (b *Builder) Subtitle(subtitle string) *Builder {
	b.item.Subtitle = strPtr(subtitle)
	return b
}

func (b *Builder) UnsetSubtitle() *Builder {
	b.item.Subtitle = nil
	return b
}

// SubtitleMod sets the subtitle shown while m is held.
func (b *Builder) SubtitleMod(m Modifier, subtitle string) *Builder {
	b.mod(m).Subtitle = strPtr(subtitle)
	return b
}

func (b *Builder) UnsetSubtitleMod(m Modifier) *Builder {
	b.clearMod(m, func(d *ModifierData) { d.Subtitle = nil })
	return b
}

// ClearSubtitle removes the subtitle and every modifier subtitle.
func (b *Builder) ClearSubtitle() *Builder {
	b.item.Subtitle = nil
	for _, m := range AllModifiers {
		b.UnsetSubtitleMod(m)
	}
	return b
}

func (b *Builder) Icon(icon *Icon) *Builder {
	b.item.Icon = icon
	return b
}

func (b *Builder) IconPath(path string) *Builder {
	return b.Icon(PathIcon(path))
}

func (b *Builder) IconFile(path string) *Builder {
	return b.Icon(FileIcon(path))
}

func (b *Builder) IconFileType(uti string) *Builder {
	return b.Icon(FileTypeIcon(uti))
}

func (b *Builder) UnsetIcon() *Builder {
	b.item.Icon = nil
	return b
}

// IconMod sets the icon shown while m is held.
func (b *Builder) IconMod(m Modifier, icon *Icon) *Builder {
	b.mod(m).Icon = icon
	return b
}

func (b *Builder) UnsetIconMod(m Modifier) *Builder {
	b.clearMod(m, func(d *ModifierData) { d.Icon = nil })
	return b
}

// ClearIcon removes the icon and every modifier icon.
func (b *Builder) ClearIcon() *Builder {
	b.item.Icon = nil
	for _, m := range AllModifiers {
		b.UnsetIconMod(m)
	}
	return b
}

func (b *Builder) UID(uid string) *Builder {
	b.item.UID = strPtr(uid)
	return b
}

func (b *Builder) UnsetUID() *Builder {
	b.item.UID = nil
	return b
}

func (b *Builder) Arg(arg string) *Builder {
	b.item.Arg = strPtr(arg)
	return b
}

func (b *Builder) UnsetArg() *Builder {
	b.item.Arg = nil
	return b
}

// ArgMod sets the arg passed on while m is held.
func (b *Builder) ArgMod(m Modifier, arg string) *Builder {
	b.mod(m).Arg = strPtr(arg)
	return b
}

func (b *Builder) UnsetArgMod(m Modifier) *Builder {
	b.clearMod(m, func(d *ModifierData) { d.Arg = nil })
	return b
}

// ClearArg removes the arg and every modifier arg.
func (b *Builder) ClearArg() *Builder {
	b.item.Arg = nil
	for _, m := range AllModifiers {
		b.UnsetArgMod(m)
	}
	return b
}

func (b *Builder) Type(t ItemType) *Builder {
	b.item.Type = t
	return b
}

func (b *Builder) Valid(valid bool) *Builder {
	b.item.Valid = valid
	return b
}

// ValidMod sets whether the item is actionable while m is held.
func (b *Builder) ValidMod(m Modifier, valid bool) *Builder {
	b.mod(m).Valid = &valid
	return b
}

func (b *Builder) UnsetValidMod(m Modifier) *Builder {
	b.clearMod(m, func(d *ModifierData) { d.Valid = nil })
	return b
}

// ClearValid resets validity to true and drops every modifier override.
func (b *Builder) ClearValid() *Builder {
	b.item.Valid = true
	for _, m := range AllModifiers {
		b.UnsetValidMod(m)
	}
	return b
}

// Modifier replaces all data for m at once. Nil strings leave that field unset.
func (b *Builder) Modifier(m Modifier, subtitle, arg *string, valid bool, icon *Icon) *Builder {
	if b.item.Modifiers == nil {
		b.item.Modifiers = make(map[Modifier]*ModifierData)
	}
	b.item.Modifiers[m] = &ModifierData{Subtitle: subtitle, Arg: arg, Valid: &valid, Icon: icon}
	return b
}

func (b *Builder) UnsetModifier(m Modifier) *Builder {
	delete(b.item.Modifiers, m)
	return b
}

func (b *Builder) Autocomplete(text string) *Builder {
	b.item.Autocomplete = strPtr(text)
	return b
}

func (b *Builder) UnsetAutocomplete() *Builder {
	b.item.Autocomplete = nil
	return b
}

// TextCopy sets the text copied with cmd-C.
func (b *Builder) TextCopy(text string) *Builder {
	b.item.TextCopy = strPtr(text)
	return b
}

func (b *Builder) UnsetTextCopy() *Builder {
	b.item.TextCopy = nil
	return b
}

// TextLargeType sets the text shown with cmd-L.
func (b *Builder) TextLargeType(text string) *Builder {
	b.item.TextLargeType = strPtr(text)
	return b
}

func (b *Builder) UnsetTextLargeType() *Builder {
	b.item.TextLargeType = nil
	return b
}

func (b *Builder) QuicklookURL(url string) *Builder {
	b.item.QuicklookURL = strPtr(url)
	return b
}

func (b *Builder) UnsetQuicklookURL() *Builder {
	b.item.QuicklookURL = nil
	return b
}
