package preview

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// PanicPrefix starts the message of errors built from non-error panic values.
const PanicPrefix = "An error occurred while rendering the resume: "

// ToError converts a recovered panic value into an error.
func ToError(v any) error {
	switch e := v.(type) {
	case nil:
		return nil
	case error:
		return e
	default:
		return errors.New(PanicPrefix + fmt.Sprint(v))
	}
}

// ErrorView is the data behind the error page.
type ErrorView struct {
	Type    string
	Message string
	// Stack lists the messages of the wrapped causes, outermost first.
	Stack []string
}

// NewErrorView builds the view for err with terminal colour codes removed.
func NewErrorView(err error) ErrorView {
	view := ErrorView{
		Type:    strings.TrimPrefix(fmt.Sprintf("%T", err), "*"),
		Message: ansi.Strip(err.Error()),
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		view.Stack = append(view.Stack, ansi.Strip(cause.Error()))
	}
	return view
}

//go:embed templates/error.html.tmpl
var errorPageSource string

var errorPage = template.Must(template.New("error").Parse(errorPageSource))

// RenderErrorPage renders the default error page.
func RenderErrorPage(view ErrorView) (string, error) {
	var buf bytes.Buffer
	if err := errorPage.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
