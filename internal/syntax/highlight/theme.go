package highlight

import "github.com/gdamore/tcell/v2"

// Theme maps token types to terminal styles.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Foreground is the default text color.
	Foreground tcell.Color

	// Background is the editor background color.
	Background tcell.Color

	// TokenStyles maps token types to their styles.
	TokenStyles map[TokenType]tcell.Style
}

// StyleForToken returns the style for a token type on top of base.
// Only the foreground and attributes come from the theme so that block
// backgrounds show through.
func (t *Theme) StyleForToken(tokenType TokenType, base tcell.Style) tcell.Style {
	style, ok := t.TokenStyles[tokenType]
	if !ok {
		return base.Foreground(t.Foreground)
	}
	fg, _, attrs := style.Decompose()
	return base.Foreground(fg).Attributes(attrs)
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() *Theme {
	comment := tcell.NewRGBColor(106, 153, 85)
	keyword := tcell.NewRGBColor(86, 156, 214)
	str := tcell.NewRGBColor(206, 145, 120)
	number := tcell.NewRGBColor(181, 206, 168)
	function := tcell.NewRGBColor(220, 220, 170)
	typ := tcell.NewRGBColor(78, 201, 176)
	constant := tcell.NewRGBColor(79, 193, 255)
	plain := tcell.NewRGBColor(212, 212, 212)
	red := tcell.NewRGBColor(244, 71, 71)

	s := tcell.StyleDefault
	return &Theme{
		Name:       "Default Dark",
		Foreground: plain,
		Background: tcell.NewRGBColor(30, 30, 30),
		TokenStyles: map[TokenType]tcell.Style{
			TokenComment:            s.Foreground(comment).Italic(true),
			TokenCommentLine:        s.Foreground(comment).Italic(true),
			TokenCommentBlock:       s.Foreground(comment).Italic(true),
			TokenString:             s.Foreground(str),
			TokenStringEscape:       s.Foreground(function),
			TokenNumber:             s.Foreground(number),
			TokenNumberHex:          s.Foreground(number),
			TokenKeyword:            s.Foreground(keyword),
			TokenKeywordControl:     s.Foreground(keyword),
			TokenKeywordDeclaration: s.Foreground(keyword).Bold(true),
			TokenOperator:           s.Foreground(plain),
			TokenPunctuation:        s.Foreground(plain),
			TokenConstant:           s.Foreground(constant),
			TokenConstantLanguage:   s.Foreground(keyword),
			TokenFunction:           s.Foreground(function),
			TokenFunctionBuiltin:    s.Foreground(function),
			TokenTypeName:           s.Foreground(typ),
			TokenTypeBuiltin:        s.Foreground(typ),
			TokenMarkupHeading:      s.Foreground(keyword).Bold(true),
			TokenMarkupBold:         s.Bold(true),
			TokenMarkupItalic:       s.Italic(true),
			TokenMarkupCode:         s.Foreground(str),
			TokenMarkupInserted:     s.Foreground(comment),
			TokenMarkupDeleted:      s.Foreground(red),
			TokenInvalid:            s.Foreground(red).Underline(true),
			TokenMeta:               s.Foreground(typ),
			TokenTag:                s.Foreground(keyword),
			TokenAttribute:          s.Foreground(constant),
			TokenUnit:               s.Foreground(typ),
		},
	}
}

// LightTheme returns a light theme.
func LightTheme() *Theme {
	comment := tcell.NewRGBColor(0, 128, 0)
	keyword := tcell.NewRGBColor(0, 0, 255)
	str := tcell.NewRGBColor(163, 21, 21)
	number := tcell.NewRGBColor(9, 134, 88)
	typ := tcell.NewRGBColor(38, 127, 153)

	s := tcell.StyleDefault
	return &Theme{
		Name:       "Light",
		Foreground: tcell.NewRGBColor(0, 0, 0),
		Background: tcell.NewRGBColor(255, 255, 255),
		TokenStyles: map[TokenType]tcell.Style{
			TokenComment:            s.Foreground(comment).Italic(true),
			TokenCommentLine:        s.Foreground(comment).Italic(true),
			TokenString:             s.Foreground(str),
			TokenNumber:             s.Foreground(number),
			TokenKeyword:            s.Foreground(keyword),
			TokenKeywordDeclaration: s.Foreground(keyword).Bold(true),
			TokenConstantLanguage:   s.Foreground(keyword),
			TokenTypeName:           s.Foreground(typ),
			TokenTypeBuiltin:        s.Foreground(typ),
			TokenMarkupHeading:      s.Foreground(keyword).Bold(true),
			TokenTag:                s.Foreground(str),
			TokenUnit:               s.Foreground(typ),
		},
	}
}

// ThemeByName returns a built-in theme. Unknown names give the default.
func ThemeByName(name string) *Theme {
	if name == "light" {
		return LightTheme()
	}
	return DefaultTheme()
}
