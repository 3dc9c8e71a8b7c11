package links

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrPathJoin reports a workspace root and reference that cannot be combined.
var ErrPathJoin = errors.New("path join failed")

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*$`)

// Resolver renders file references in one mode. The zero value renders
// ModeRelative. Resolve performs no I/O and is safe for concurrent use.
type Resolver struct {
	Mode   Mode
	Scheme string
}

// NewResolver validates mode and scheme. An empty scheme means DefaultScheme.
func NewResolver(mode Mode, scheme string) (Resolver, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return Resolver{}, err
	}
	if scheme == "" {
		scheme = DefaultScheme
	}
	if !schemePattern.MatchString(scheme) {
		return Resolver{}, fmt.Errorf("invalid link scheme %q", scheme)
	}
	return Resolver{Mode: mode, Scheme: scheme}, nil
}

// Resolve renders ref in mode with the default scheme.
func Resolve(ref FileReference, workspaceRoot string, mode Mode) LinkTarget {
	return Resolver{Mode: mode}.Resolve(ref, workspaceRoot)
}

// Resolve renders ref against workspaceRoot.
//
// An empty workspaceRoot renders ModeRelative. When the root and reference
// cannot be joined the result is also ModeRelative, with Fallback set.
func (r Resolver) Resolve(ref FileReference, workspaceRoot string) LinkTarget {
	display := ref.Path
	if ref.Line > 0 {
		display += ":" + strconv.Itoa(ref.Line)
	}
	rel := normalize(ref.Path)

	mode := r.Mode
	if mode == "" {
		mode = ModeRelative
	}
	root := strings.TrimSpace(workspaceRoot)
	if root == "" || mode == ModeRelative {
		return relative(rel, display)
	}

	var uri string
	var err error
	switch mode {
	case ModeAbsoluteURI:
		uri, err = fileURI(root, rel, ref.Line)
	case ModeCustomScheme:
		scheme := r.Scheme
		if scheme == "" {
			scheme = DefaultScheme
		}
		uri, err = schemeURI(scheme, root, rel, ref.Line)
	case ModeWorkspaceRelative:
		uri, err = workspaceRelative(root, rel)
	default:
		t := relative(rel, display)
		t.Fallback = true
		t.FallbackReason = FallbackUnknownMode
		return t
	}
	if err != nil {
		t := relative(rel, display)
		t.Fallback = true
		t.FallbackReason = FallbackPathJoin
		return t
	}

	return LinkTarget{DisplayText: display, URI: uri, Mode: mode}
}

func relative(rel, display string) LinkTarget {
	rel = strings.TrimLeft(strings.TrimPrefix(rel, "./"), "/")
	return LinkTarget{DisplayText: display, URI: "./" + rel, Mode: ModeRelative}
}

func fileURI(root, rel string, line int) (string, error) {
	abs, err := joinAbsolute(root, rel)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: abs}
	if line > 0 {
		u.Fragment = "L" + strconv.Itoa(line)
	}
	return u.String(), nil
}

func schemeURI(scheme, root, rel string, line int) (string, error) {
	abs, err := joinAbsolute(root, rel)
	if err != nil {
		return "", err
	}
	uri := scheme + "://file" + (&url.URL{Path: abs}).EscapedPath()
	if line > 0 {
		uri += ":" + strconv.Itoa(line)
	}
	return uri, nil
}

func workspaceRelative(root, rel string) (string, error) {
	if err := checkPath(root); err != nil {
		return "", err
	}
	if err := checkPath(rel); err != nil {
		return "", err
	}
	base := path.Base(normalize(root))
	if base == "/" || base == "." {
		return "", fmt.Errorf("%w: workspace root %q has no base name", ErrPathJoin, root)
	}
	rel = strings.TrimLeft(strings.TrimPrefix(rel, "./"), "/")
	return collapse(base + "/" + rel), nil
}

// joinAbsolute joins root and rel into a slash-separated path that always
// starts with "/", so Windows roots come out as /C:/...
func joinAbsolute(root, rel string) (string, error) {
	if err := checkPath(root); err != nil {
		return "", err
	}
	if err := checkPath(rel); err != nil {
		return "", err
	}
	joined := path.Join(normalize(root), rel)
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined, nil
}

// checkPath rejects strings that cannot be part of a file path.
func checkPath(p string) error {
	if !utf8.ValidString(p) {
		return fmt.Errorf("%w: invalid UTF-8 in %q", ErrPathJoin, p)
	}
	for _, c := range p {
		if c < 0x20 || c == 0x7f {
			return fmt.Errorf("%w: control character in %q", ErrPathJoin, p)
		}
	}
	return nil
}

// normalize converts backslashes to slashes and collapses repeated separators.
func normalize(p string) string {
	return collapse(strings.ReplaceAll(p, `\`, "/"))
}

func collapse(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}
