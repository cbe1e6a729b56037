package buildpipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// outputPathFor picks the .c path for src:
//   - req.OutputPath for single-file builds;
//   - src mirrored under req.OutputDir relative to req.BaseDir;
//   - otherwise next to src.
func outputPathFor(req *BuildRequest, src string) (string, error) {
	if req.OutputPath != "" {
		return req.OutputPath, nil
	}
	name := strings.TrimSuffix(src, filepath.Ext(src)) + ".c"
	if req.OutputDir != "" {
		name = filepath.Join(req.OutputDir, mirroredName(src, req.BaseDir))
	}
	if sameFile(name, src) {
		return "", fmt.Errorf("output %s would overwrite its source", name)
	}
	return name, nil
}

// mirroredName returns src relative to baseDir with a .c extension, or its
// base name when src lies outside baseDir.
func mirroredName(src, baseDir string) string {
	rel := filepath.Base(src)
	if baseDir != "" {
		absBase, errBase := filepath.Abs(baseDir)
		absSrc, errSrc := filepath.Abs(src)
		if errBase == nil && errSrc == nil {
			if r, err := filepath.Rel(absBase, absSrc); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".c"
}

// companionPath swaps the .c extension of out for ext.
func companionPath(out, ext string) string {
	return strings.TrimSuffix(out, ".c") + ext
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
