package updater

import (
	"context"
	"strings"
)

// Bundle file suffixes Alfred can install. The Alfred 3 suffix is the more
// specific one and wins when a release carries both.
const (
	BundleSuffix  = ".alfredworkflow"
	Bundle3Suffix = ".alfred3workflow"
)

// assetStateUploaded is the asset state GitHub reports for completed uploads.
const assetStateUploaded = "uploaded"

// Releaser reports the most recent published release of a project.
// Implementations fetch metadata only, never the bundle itself.
type Releaser interface {
	Latest(ctx context.Context, project string) (*Release, error)
}

// Release is one published release point.
type Release struct {
	Tag     string  // raw tag as published, e.g. "v2.0.0"
	Version Version // Tag with the leading "v" stripped, parsed
	Assets  []Asset
}

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name  string
	URL   string
	State string
}

// Extension returns the bundle suffix of the asset without the leading dot,
// or "" if the asset is not a workflow bundle.
func (a Asset) Extension() string {
	name := a.fileName()
	switch {
	case strings.HasSuffix(name, Bundle3Suffix):
		return strings.TrimPrefix(Bundle3Suffix, ".")
	case strings.HasSuffix(name, BundleSuffix):
		return strings.TrimPrefix(BundleSuffix, ".")
	default:
		return ""
	}
}

// Installable reports whether the asset finished uploading and is a bundle.
func (a Asset) Installable() bool {
	return a.State == assetStateUploaded && a.Extension() != "" && a.URL != ""
}

func (a Asset) fileName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.URL
}

// InstallableAsset picks the bundle to download from r. A nil release means
// no metadata has been fetched yet and yields ErrNoReleaseData.
func (r *Release) InstallableAsset() (Asset, error) {
	if r == nil {
		return Asset{}, &Error{Kind: ErrNoReleaseData, Op: "select asset"}
	}

	var candidates []Asset
	for _, a := range r.Assets {
		if a.Installable() {
			candidates = append(candidates, a)
		}
	}

	if len(candidates) == 0 {
		return Asset{}, &Error{Kind: ErrNoDownloadAsset, Op: "select asset " + r.Tag}
	}
	for _, a := range candidates {
		if strings.HasSuffix(a.fileName(), Bundle3Suffix) {
			return a, nil
		}
	}
	return candidates[0], nil
}

// DownloadURL returns the URL of the installable asset.
func (r *Release) DownloadURL() (string, error) {
	a, err := r.InstallableAsset()
	if err != nil {
		return "", err
	}
	return a.URL, nil
}
