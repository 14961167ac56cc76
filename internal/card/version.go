package card

import "github.com/leapstack-labs/cardfile/pkg/core"

// Format versions. Dotted versions fold as a*10000 + b*100 + c.
const (
	// CurrentVersion is the version written by this build (2.1.0).
	CurrentVersion core.Version = 20100

	// VersionFontPath renamed the font file "path" to "font_path" (2.0.0).
	VersionFontPath core.Version = 20000
	// VersionPackTypes renamed the game's "pack_item" list to "pack_types" (0.3.8).
	VersionPackTypes core.Version = 308
	// VersionIntegerDPI made the stylesheet resolution an integer (2.0.0).
	VersionIntegerDPI core.Version = 20000
)
