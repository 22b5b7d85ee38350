package options

// Kind enumerates the built-in download profiles.
type Kind int

const (
	BestUpTo720 Kind = iota
	AudioOnly
	UpTo1080
	UpTo720
	Custom
)

// Mode is the user's selected download profile. For Custom, Expr holds the
// raw yt-dlp format expression and Embeds whether the user separately
// confirmed metadata/thumbnail embedding.
type Mode struct {
	Kind   Kind
	Expr   string
	Embeds bool
}

// Labels returns the display names for the selectable profiles, indexed by
// Kind.
func Labels() []string {
	return []string{
		"Best quality up to 720p",
		"Audio only (mp3)",
		"Up to 1080p (merged)",
		"Up to 720p (merged)",
		"Custom format expression",
	}
}

// Compile maps a mode and the provisioning state to the yt-dlp argument
// vector. The caller appends the target URL as the final argument.
func Compile(mode Mode, advancedEnabled bool, toolBinDir string) []string {
	args := []string{"--no-part", "--console-title"}

	switch mode.Kind {
	case BestUpTo720:
		args = append(args, "-f", "best[height<=720]/best")
	case AudioOnly:
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "0")
	case UpTo1080:
		args = append(args, "-f", "bestvideo[height<=1080]+bestaudio/best[height<=1080]")
	case UpTo720:
		args = append(args, "-f", "bestvideo[height<=720]+bestaudio/best[height<=720]")
	case Custom:
		if mode.Expr != "" {
			args = append(args, "-f", mode.Expr)
		}
	}

	if !advancedEnabled {
		return args
	}

	args = append(args, "--ffmpeg-location", toolBinDir)

	embeds := true
	if mode.Kind == Custom {
		embeds = mode.Embeds
	}
	if embeds {
		args = append(args, "--embed-metadata")
		if mode.Kind != AudioOnly {
			args = append(args, "--embed-thumbnail")
		}
	}
	return args
}
