// Package plctypes holds the domain value types shared across the runtime's
// packages: lifecycle states, plugin configuration records, timing
// statistics, and the binary debug sub-protocol's constants. Keeping these in
// one leaf package (with no dependency on pkg/loader, pkg/plugin, pkg/scan,
// or pkg/control) avoids import cycles between the packages that produce and
// consume them.
package plctypes
