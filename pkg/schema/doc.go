// Package schema declares how reflected types persist.
//
// Each type builds its declaration once, at package init, with a typed
// Builder:
//
//	var fontFileType = schema.Declare[FontFile]("font_file").
//		Fields(
//			schema.Field("name", func(f *FontFile) *string { return &f.Name }, schema.String),
//			schema.Field("font_path", func(f *FontFile) *string { return &f.Path }, schema.String),
//		).
//		Compat(2, "path", "font_path").
//		Build()
//
// The result is an immutable ordered table of FieldEntry values plus the
// compatibility aliases of the type. Types are collected in a Registry,
// which maps type tags to factories for polymorphic reads. Resolve maps a
// (version, key) pair to the entry that consumes it.
package schema
