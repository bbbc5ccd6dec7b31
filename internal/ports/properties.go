package ports

// PropertySource is an opaque bag of named string properties.
type PropertySource interface {
	Lookup(key string) (string, bool)
}

// PropertyLister is implemented by sources that can enumerate their keys.
type PropertyLister interface {
	PropertySource
	Properties() map[string]string
}
