package dispatch

import "fmt"

const downloadURL = "https://imagemagick.org/script/download.php"

// InstallInstructions returns how to install ImageMagick on goos.
func InstallInstructions(goos string) string {
	var how string
	switch goos {
	case "darwin":
		how = "Install ImageMagick using Homebrew:\n  brew install imagemagick"
	case "linux":
		how = "Install ImageMagick using your package manager:\n  sudo apt install imagemagick\n  or\n  sudo dnf install ImageMagick"
	case "windows":
		how = "Download and install ImageMagick from the official website.\n  Use winget: winget install ImageMagick.Q16-HDRI"
	default:
		how = "Install ImageMagick using your system's package manager."
	}
	return fmt.Sprintf("ImageMagick is not installed.\n\n%s\n\nFor more details, visit: %s", how, downloadURL)
}
