package term

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	esc = 0x1b
	del = 0x7f
)

// event is one decoded unit of terminal input: a key, or a cursor position
// report sent in reply to a DSR request.
type event struct {
	key      tea.Key
	isReport bool
	row, col int
}

// decoder turns raw terminal bytes into events.
type decoder struct {
	r *bufio.Reader
}

func newDecoder(r *bufio.Reader) *decoder {
	return &decoder{r: r}
}

func (d *decoder) next() (event, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return event{}, err
	}

	switch {
	case b == esc:
		return d.escape()
	case b == '\r' || b == '\n':
		return keyEvent(tea.KeyEnter), nil
	case b == del || b == 0x08:
		return keyEvent(tea.KeyBackspace), nil
	case b < 0x20:
		return keyEvent(tea.KeyType(b)), nil
	}

	if err := d.r.UnreadByte(); err != nil {
		return event{}, err
	}
	return d.runes()
}

// runes reads one rune, plus any printable runes already buffered behind it
// so a paste arrives as a single key.
func (d *decoder) runes() (event, error) {
	r, _, err := d.r.ReadRune()
	if err != nil {
		return event{}, err
	}

	runes := []rune{r}
	for d.r.Buffered() > 0 {
		peek, err := d.r.Peek(1)
		if err != nil || peek[0] < 0x20 || peek[0] == del {
			break
		}
		if !utf8.FullRune(peekBuffered(d.r)) {
			break
		}
		r, _, err := d.r.ReadRune()
		if err != nil {
			break
		}
		runes = append(runes, r)
	}

	if len(runes) == 1 && runes[0] == ' ' {
		return event{key: tea.Key{Type: tea.KeySpace, Runes: runes}}, nil
	}
	return event{key: tea.Key{Type: tea.KeyRunes, Runes: runes, Paste: len(runes) > 1}}, nil
}

func peekBuffered(r *bufio.Reader) []byte {
	n := min(r.Buffered(), utf8.UTFMax)
	b, _ := r.Peek(n)
	return b
}

// escape decodes what follows an ESC byte. A lone ESC (nothing else
// buffered) is the Escape key; ESC followed by a rune is that rune with Alt.
func (d *decoder) escape() (event, error) {
	if d.r.Buffered() == 0 {
		return keyEvent(tea.KeyEsc), nil
	}

	b, err := d.r.ReadByte()
	if err != nil {
		return event{}, err
	}

	switch b {
	case '[':
		return d.csi()
	case 'O':
		return d.ss3()
	case esc:
		return keyEvent(tea.KeyEsc), nil
	}

	if err := d.r.UnreadByte(); err != nil {
		return event{}, err
	}
	r, _, err := d.r.ReadRune()
	if err != nil {
		return event{}, err
	}
	return event{key: tea.Key{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}}, nil
}

// csi decodes a control sequence after "ESC [": parameter bytes up to a
// final byte in 0x40-0x7e.
func (d *decoder) csi() (event, error) {
	var params strings.Builder
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return event{}, err
		}
		if b >= 0x40 && b <= 0x7e {
			return decodeCSI(params.String(), b)
		}
		params.WriteByte(b)
	}
}

func decodeCSI(params string, final byte) (event, error) {
	switch final {
	case 'A':
		return keyEvent(tea.KeyUp), nil
	case 'B':
		return keyEvent(tea.KeyDown), nil
	case 'C':
		return keyEvent(tea.KeyRight), nil
	case 'D':
		return keyEvent(tea.KeyLeft), nil
	case 'H':
		return keyEvent(tea.KeyHome), nil
	case 'F':
		return keyEvent(tea.KeyEnd), nil
	case 'R':
		if rowText, colText, ok := strings.Cut(params, ";"); ok {
			row, rowErr := strconv.Atoi(rowText)
			col, colErr := strconv.Atoi(colText)
			if rowErr != nil || colErr != nil {
				return event{}, fmt.Errorf("malformed cursor position report %q", params)
			}
			return event{isReport: true, row: row, col: col}, nil
		}
	case '~':
		code, _, _ := strings.Cut(params, ";")
		switch code {
		case "1", "7":
			return keyEvent(tea.KeyHome), nil
		case "4", "8":
			return keyEvent(tea.KeyEnd), nil
		case "3":
			return keyEvent(tea.KeyDelete), nil
		case "5":
			return keyEvent(tea.KeyPgUp), nil
		case "6":
			return keyEvent(tea.KeyPgDown), nil
		}
	}

	// Unsupported sequences decode to a key nothing is bound to.
	return keyEvent(tea.KeyNull), nil
}

// ss3 decodes the application-mode cursor keys some terminals send as
// "ESC O <final>".
func (d *decoder) ss3() (event, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return event{}, err
	}
	return decodeCSI("", b)
}

func keyEvent(t tea.KeyType) event {
	return event{key: tea.Key{Type: t}}
}
