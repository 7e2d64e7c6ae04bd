package driver

import (
	"strconv"

	"pyjs/internal/project"
	"pyjs/internal/version"
)

// unitKey derives the cache key of one unit build: H(content || schema ||
// emit || max depth || run main || compiler version).
func unitKey(content project.Digest, opts Options) project.Digest {
	runMain := "0"
	if opts.RunMain {
		runMain = "1"
	}
	return project.Combine(content,
		[]byte(strconv.Itoa(int(diskCacheSchemaVersion))),
		[]byte{byte(opts.Emit)},
		[]byte(strconv.Itoa(opts.Mono.MaxDepth)),
		[]byte(runMain),
		[]byte(version.Version),
	)
}
