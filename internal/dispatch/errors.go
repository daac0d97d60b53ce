package dispatch

import "github.com/magick-mcp/magick-mcp/internal/registry"

// ValidationError reports a func_save request rejected before the store is
// touched.
type ValidationError = registry.ValidationError
