package html

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	sessioncontext "baletrack/frontend/shared/context"
)

// Page builds a laid-out page whose body is written by build.
func Page(title string, build func(ctx context.Context, b *strings.Builder)) templ.Component {
	return Layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		build(ctx, &b)
		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// Option is one entry of a select box.
type Option struct {
	Value string
	Label string
}

func CSRFField(ctx context.Context) string {
	return fmt.Sprintf(`<input type="hidden" name="_csrf" value="%s">`, Esc(sessioncontext.CSRFToken(ctx)))
}

// PostForm opens a POST form carrying the CSRF token.
func PostForm(ctx context.Context, action, class string) string {
	return fmt.Sprintf(`<form method="post" action="%s" class="%s">%s`, Esc(action), Esc(class), CSRFField(ctx))
}

func TextInput(label, name, value string, required bool) string {
	return input("text", label, name, value, required)
}

func NumberInput(label, name, value string) string {
	return fmt.Sprintf(`<label>%s<input type="number" step="any" name="%s" value="%s"></label>`, Esc(label), Esc(name), Esc(value))
}

func DateInput(label, name, value string) string {
	return input("date", label, name, value, false)
}

func input(kind, label, name, value string, required bool) string {
	req := ""
	if required {
		req = " required"
	}
	return fmt.Sprintf(`<label>%s<input type="%s" name="%s" value="%s"%s></label>`, Esc(label), kind, Esc(name), Esc(value), req)
}

func TextArea(label, name, value string) string {
	return fmt.Sprintf(`<label>%s<textarea name="%s">%s</textarea></label>`, Esc(label), Esc(name), Esc(value))
}

func Checkbox(label, name string, checked bool) string {
	c := ""
	if checked {
		c = " checked"
	}
	return fmt.Sprintf(`<label class="check"><input type="checkbox" name="%s" value="1"%s>%s</label>`, Esc(name), c, Esc(label))
}

// Select renders a single-choice dropdown. A blank first option is added
// when blank is non-empty.
func Select(label, name string, opts []Option, selected, blank string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<label>%s<select name="%s">`, Esc(label), Esc(name))
	if blank != "" {
		fmt.Fprintf(&b, `<option value="">%s</option>`, Esc(blank))
	}
	for _, o := range opts {
		sel := ""
		if o.Value == selected {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, Esc(o.Value), sel, Esc(o.Label))
	}
	b.WriteString(`</select></label>`)
	return b.String()
}

// MultiSelect renders a multiple-choice list.
func MultiSelect(label, name string, opts []Option, selected map[string]bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<label>%s<select name="%s" multiple size="8">`, Esc(label), Esc(name))
	for _, o := range opts {
		sel := ""
		if selected[o.Value] {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, Esc(o.Value), sel, Esc(o.Label))
	}
	b.WriteString(`</select></label>`)
	return b.String()
}

// DeleteButton renders a confirmable delete form.
func DeleteButton(ctx context.Context, action, what string) string {
	return PostForm(ctx, action, "inline") +
		fmt.Sprintf(`<button type="submit" class="danger" onclick="return confirm('Delete this %s?')">Delete</button></form>`, Esc(what))
}

// FormatFloat renders an optional number, or "-" when absent.
func FormatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FloatValue renders an optional number for a form input.
func FloatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func FormatMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(*v, 'f', 2, 64)
}

func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}

// OrDash substitutes "-" for blank text.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
