// Package featureflags gates forward and backward compatibility for the
// table format surrounding this repository's indexes. It derives the
// reader and writer flag words from a manifest's fragment metadata and
// decides admissibility for a given reader or writer, following
// original_source/rust/lance-table/src/feature_flags.rs.
package featureflags

import "github.com/lancedb/lance-index-core/internal/idxerrors"

const (
	// FlagDeletionFiles means at least one fragment carries a deletion
	// file recording soft-deleted row tombstones.
	FlagDeletionFiles uint64 = 1
	// FlagMoveStableRowIDs means row IDs survive fragment moves (but not
	// updates); every fragment carries a row-ID-to-address mapping.
	FlagMoveStableRowIDs uint64 = 2
	// FlagUseV2FormatDeprecated is a legacy marker this gate never sets;
	// DeprecatedV2Set reports whether a foreign writer left it set.
	FlagUseV2FormatDeprecated uint64 = 4
	// FlagTableConfig means the manifest's table-config map is non-empty.
	FlagTableConfig uint64 = 8
	// FlagUnknown is the first bit this build does not recognize. Any
	// flag word with this bit (or higher) set is refused.
	FlagUnknown uint64 = 16
)

// FragmentInfo is the minimal per-fragment view the gate needs: whether the
// fragment has a deletion file and whether it carries stable-row-ID
// metadata. The full fragment/manifest structure is out of scope here.
type FragmentInfo struct {
	HasDeletionFile bool
	HasStableRowIDs bool
}

// Manifest is the minimal manifest view the gate reads and writes.
type Manifest struct {
	Fragments          []FragmentInfo
	TableConfig        map[string]string
	ReaderFeatureFlags uint64
	WriterFeatureFlags uint64
}

// Apply derives manifest.ReaderFeatureFlags and manifest.WriterFeatureFlags
// from the manifest's current fragment metadata, resetting both words
// first. enableStableRowID forces the stable-row-ID consistency check even
// if no fragment currently carries row-ID metadata (the caller is
// requesting the table be created with stable row IDs from the start).
//
// Apply is idempotent: calling it twice on an unchanged manifest produces
// the same flag words both times (spec.md §8, invariant 7).
func Apply(manifest *Manifest, enableStableRowID bool) error {
	manifest.ReaderFeatureFlags = 0
	manifest.WriterFeatureFlags = 0

	hasDeletionFiles := false
	for _, frag := range manifest.Fragments {
		if frag.HasDeletionFile {
			hasDeletionFiles = true
			break
		}
	}
	if hasDeletionFiles {
		manifest.ReaderFeatureFlags |= FlagDeletionFiles
		manifest.WriterFeatureFlags |= FlagDeletionFiles
	}

	hasRowIDs := false
	for _, frag := range manifest.Fragments {
		if frag.HasStableRowIDs {
			hasRowIDs = true
			break
		}
	}
	if hasRowIDs || enableStableRowID {
		for _, frag := range manifest.Fragments {
			if !frag.HasStableRowIDs {
				return idxerrors.NewInvalidInput("all fragments must have stable row ids")
			}
		}
		manifest.ReaderFeatureFlags |= FlagMoveStableRowIDs
		manifest.WriterFeatureFlags |= FlagMoveStableRowIDs
	}

	if len(manifest.TableConfig) > 0 {
		manifest.WriterFeatureFlags |= FlagTableConfig
	}

	return nil
}

// CanRead reports whether a reader with this build's known flags may open a
// table whose reader flag word is readerFlags. The comparison is numeric
// (readerFlags < FlagUnknown), not a bitmask test: any single unknown high
// bit forces a conservative refusal even if every lower bit is recognized.
func CanRead(readerFlags uint64) bool {
	return readerFlags < FlagUnknown
}

// CanWrite reports whether a writer with this build's known flags may write
// a table whose writer flag word is writerFlags, using the same
// numeric-comparison policy as CanRead.
func CanWrite(writerFlags uint64) bool {
	return writerFlags < FlagUnknown
}

// DeprecatedV2Set reports whether a foreign writer left the deprecated v2
// marker bit set in writerFlags. This gate itself never sets the bit.
func DeprecatedV2Set(writerFlags uint64) bool {
	return writerFlags&FlagUseV2FormatDeprecated != 0
}
