package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/appointments"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/notify"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/page"
)

//go:embed templates/*.html
var templateFS embed.FS

type views struct {
	pages map[string]*template.Template
}

// Each page template defines "content" and is rendered inside layout.html.
func loadViews() (*views, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	v := &views{pages: map[string]*template.Template{}}
	for _, name := range []string{"login", "appointments", "staff"} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

type viewData struct {
	Title    string
	LoggedIn bool
	Staff    string
	Toasts   []notify.Toast
	Error    string
	Email    string

	Loading      bool
	Empty        bool
	Appointments []appointments.Appointment
	Modal        page.Modal

	Doctors []appointments.Doctor
}

func (v *views) render(w http.ResponseWriter, status int, name string, data viewData) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
