package app

import "slices"

// Extension is installed into every [Application] at construction, before any parser exists. It
// typically subscribes handlers on the application's session.
type Extension interface {
	Register(a *Application) error
}

// ExtensionFunc is an adapter to allow the use of ordinary functions as an [Extension].
type ExtensionFunc func(a *Application) error

func (f ExtensionFunc) Register(a *Application) error {
	return f(a)
}

var extensions []Extension

// RegisterExtension adds ext to the process-wide extension registry. It is meant to be called from
// an init function, and is not safe for concurrent use.
func RegisterExtension(ext Extension) {
	extensions = append(extensions, ext)
}

// RegisteredExtensions returns the extensions added with [RegisterExtension], in registration
// order.
func RegisteredExtensions() []Extension {
	return slices.Clone(extensions)
}
