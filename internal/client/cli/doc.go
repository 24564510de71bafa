// Package cli is the interactive garagekeeper client.
//
// App is the terminal counterpart of the web dashboard: each command is a
// view controller that navigates to a dashboard section (checked by the
// route guard and the caller's access policy), calls the session store or an
// entity cache, and renders the cached collection it follows.
//
// The REPL is started with App.Run, which restores a persisted session,
// then blocks until the user exits or the input ends.
package cli
