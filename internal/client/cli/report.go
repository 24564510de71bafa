package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
)

// report prints err for the user. Backend errors are shown by kind, with
// one line per rejected field.
func (a *App) report(err error) {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		a.println(errorStyle.Render("Error: " + err.Error()))
		return
	}

	switch apiErr.Kind {
	case client.KindNetwork:
		a.println(errorStyle.Render("Server unavailable: " + apiErr.Message))
	case client.KindAuth:
		a.println(errorStyle.Render("Not authorized: " + apiErr.Message))
	case client.KindNotFound:
		a.println(errorStyle.Render("Not found."))
	default:
		a.println(errorStyle.Render("Rejected: " + apiErr.Message))
	}

	names := make([]string, 0, len(apiErr.Fields))
	for name := range apiErr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, msg := range apiErr.Fields[name] {
			a.println(errorStyle.Render(fmt.Sprintf("  %s: %s", name, msg)))
		}
	}
}
