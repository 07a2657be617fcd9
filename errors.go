package grove

import "errors"

// Configuration errors. These indicate a packaging or programming defect and
// are surfaced before the first cycle runs.
var (
	ErrAssetMissing     = errors.New("asset source not found in asset root")
	ErrDuplicateTag     = errors.New("asset tag already registered")
	ErrInvalidSheet     = errors.New("invalid sprite sheet geometry")
	ErrActivated        = errors.New("asset manager already activated")
	ErrUnresolvedBase   = errors.New("composite base tag not resolved")
	ErrUnsupportedAsset = errors.New("unsupported asset format")
	ErrAssetsRegistered = errors.New("assets already registered")
)

// Runtime errors.
var (
	ErrNotFound         = errors.New("asset not found")
	ErrLoadFailed       = errors.New("asset load failed")
	ErrLoadTimeout      = errors.New("asset loading timed out")
	ErrUnknownMenuPhase = errors.New("phase is not a menu phase")
	ErrBackendClosed    = errors.New("asset backend closed")
)
