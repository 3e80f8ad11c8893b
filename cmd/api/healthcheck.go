package main

import (
	"net/http"
)

func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":         "available",
		"environment":    app.config.env,
		"version":        version,
		"gallery_policy": string(app.reconciler.Policy()),
	}

	err := app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), data, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
