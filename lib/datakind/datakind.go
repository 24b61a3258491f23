// Package datakind enumerates the IRS dataset families this backend knows
// how to process. Each kind carries the key under which its Drive upload
// folder is configured, so callers never derive lookup strings at runtime.
package datakind

import "fmt"

type Kind string

const (
	Pub78         Kind = "PUB_78"
	Postcard990   Kind = "POSTCARD_990"
	Form990Master Kind = "FORM_990_MASTER"
	Series990     Kind = "SERIES_990"
)

func All() []Kind {
	return []Kind{Pub78, Postcard990, Form990Master, Series990}
}

func (k Kind) Valid() bool {
	switch k {
	case Pub78, Postcard990, Form990Master, Series990:
		return true
	}
	return false
}

// FolderKey is the config key naming the Drive folder this kind uploads to.
func (k Kind) FolderKey() string {
	return string(k) + "_UPLOAD_FOLDER_ID"
}

// ArtifactPrefix is the lowercase prefix used for uploaded artifact names,
// e.g. "pub_78_2025-08-25_103000_data.zip".
func (k Kind) ArtifactPrefix() string {
	switch k {
	case Pub78:
		return "pub_78"
	case Postcard990:
		return "postcard_990"
	case Form990Master:
		return "form_990_master"
	case Series990:
		return "series_990"
	}
	return "unknown"
}

func Parse(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid data class: %q", s)
	}
	return k, nil
}
