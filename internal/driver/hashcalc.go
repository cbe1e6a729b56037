package driver

import (
	"strconv"

	"safec/internal/project"
	"safec/internal/version"
)

// cacheKey: H(content || options). Любая опция, влияющая на вывод, входит в ключ.
func cacheKey(content project.Digest, opts CompileOptions) project.Digest {
	optsDigest := project.DigestOf(
		version.Version,
		strconv.Itoa(opts.MaxDepth),
		strconv.FormatBool(opts.NoHeaderComment),
		opts.HeaderComment,
		strconv.FormatBool(opts.Header),
		opts.HeaderGuard,
	)
	return project.Combine(content, optsDigest)
}
