package cmdutil

import "github.com/spf13/cobra"

// AnnotationSkipConfig marks a command that runs without a valid
// application configuration, such as one that creates or checks it.
const AnnotationSkipConfig = "cymirs.skip-config"

// SkipsConfig reports whether cmd or one of its parents carries
// AnnotationSkipConfig.
func SkipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[AnnotationSkipConfig] == "true" {
			return true
		}
	}
	return false
}
