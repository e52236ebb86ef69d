//go:build !unix && !windows

package installer

func isCrossDevice(error) bool {
	return false
}
