package systemcodes

import "pkgbump/internal/errcodes"

const (
	Success                 = 0
	ErrorCodeGeneric        = 1
	ErrorCodeValidation     = 2
	ErrorCodeTransport      = 3
	ErrorCodeManifestFormat = 4
	ErrorCodePublish        = 5
)

// FromError maps an error to the process exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	switch errcodes.KindOf(err) {
	case errcodes.KindValidation:
		return ErrorCodeValidation
	case errcodes.KindTransport:
		return ErrorCodeTransport
	case errcodes.KindManifestFormat:
		return ErrorCodeManifestFormat
	case errcodes.KindPublish:
		return ErrorCodePublish
	}

	return ErrorCodeGeneric
}
