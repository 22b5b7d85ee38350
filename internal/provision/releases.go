package provision

import (
	"runtime"

	"vidgrab/internal/config"
	"vidgrab/internal/paths"
)

// MarkerDirName is the directory inside the extracted media bundle that
// holds the actual executables.
const MarkerDirName = "bin"

// connectivityHost is resolved as a cheap proxy for "internet reachable".
// It is also the host every release download comes from.
const connectivityHost = "github.com"

var downloaderURLs = map[string]string{
	"darwin-amd64":  "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_macos",
	"darwin-arm64":  "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_macos",
	"linux-amd64":   "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux",
	"linux-arm64":   "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64",
	"windows-amd64": "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp.exe",
}

// No macOS entries: BtbN does not publish darwin bundles. Users there either
// have ffmpeg already or point releases.bundle_url at a build of their own.
var bundleURLs = map[string]string{
	"linux-amd64":   "https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linux64-gpl.tar.xz",
	"linux-arm64":   "https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linuxarm64-gpl.tar.xz",
	"windows-amd64": "https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-win64-gpl.zip",
}

func currentPlatformKey() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// DownloaderURL returns the yt-dlp download URL for the current platform,
// honouring a config override.
func DownloaderURL(cfg config.Config) string {
	if cfg.Releases.DownloaderURL != "" {
		return cfg.Releases.DownloaderURL
	}
	return downloaderURLs[currentPlatformKey()]
}

// BundleURL returns the media bundle URL for the current platform,
// honouring a config override.
func BundleURL(cfg config.Config) string {
	if cfg.Releases.BundleURL != "" {
		return cfg.Releases.BundleURL
	}
	return bundleURLs[currentPlatformKey()]
}

// RequiredMediaFiles lists the executables expected inside the media bundle
// install directory, platform-suffixed.
func RequiredMediaFiles() []string {
	return []string{
		paths.ExecutableName("ffmpeg"),
		paths.ExecutableName("ffprobe"),
		paths.ExecutableName("ffplay"),
	}
}
