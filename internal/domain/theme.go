package domain

// Theme is the persisted UI preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeKey is the preference name the theme is stored under.
const ThemeKey = "askme-ui-theme"

// DefaultTheme is used when nothing valid has been persisted.
const DefaultTheme = ThemeLight

// Valid reports whether t is one of the supported themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ParseTheme returns the theme named by raw or DefaultTheme when raw is absent or invalid.
func ParseTheme(raw string) Theme {
	if t := Theme(raw); t.Valid() {
		return t
	}
	return DefaultTheme
}
