package gptab

import (
	"errors"

	"github.com/intuitionamiga/gptab/internal/archive"
	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/gp35"
	"github.com/intuitionamiga/gptab/internal/gpif"
	"github.com/intuitionamiga/gptab/internal/gpx"
	"github.com/intuitionamiga/gptab/internal/inflate"
)

const scoreEntryName = "Content/score.gpif"

// Parse detects data's format and decodes it into a Song. filename is
// optional and only consulted when the magic bytes are ambiguous.
func Parse(data []byte, filename string) (*Song, error) {
	format, err := DetectFormat(data, filename)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatGPX:
		return ParseGpx(data)
	case FormatGP7:
		return ParseGp7(data)
	case FormatGP5:
		return ParseGp5(data)
	case FormatGP3:
		return ParseGp3(data)
	default:
		return nil, newErr(ErrUnrecognizedFormat, "parse", "no recognizable format magic or filename suffix")
	}
}

// ParseGpx decodes a GPX container into a Song.
func ParseGpx(data []byte) (*Song, error) {
	xmlBytes, err := gpx.Decode(data)
	if err != nil {
		return nil, foldGpxError(err)
	}
	return transformGpif(xmlBytes)
}

// ParseGp7 decodes a GP7 archive container into a Song.
func ParseGp7(data []byte) (*Song, error) {
	xmlBytes, err := archive.Extract(data, scoreEntryName)
	if err != nil {
		return nil, foldArchiveError(err)
	}
	return transformGpif(xmlBytes)
}

// ParseGp5 decodes a GP5 sequential binary file into a Song.
func ParseGp5(data []byte) (*Song, error) {
	song, err := gp35.DecodeGp5(data)
	if err != nil {
		return nil, foldGp35Error(err)
	}
	return song, nil
}

// ParseGp3 decodes a GP3 sequential binary file into a Song.
func ParseGp3(data []byte) (*Song, error) {
	song, err := gp35.DecodeGp3(data)
	if err != nil {
		return nil, foldGp35Error(err)
	}
	return song, nil
}

func transformGpif(xmlBytes []byte) (*Song, error) {
	root, err := gpif.ParseDocument(xmlBytes)
	if err != nil {
		return nil, wrapErr(ErrBadXML, "gpif", "failed to parse GPIF document", err)
	}
	if root.Name != "GPIF" {
		return nil, newErr(ErrBadContainer, "gpif", "document root is not <GPIF>")
	}
	song, err := gpif.Transform(root)
	if err != nil {
		return nil, foldGpifError(err)
	}
	return song, nil
}

func foldGpxError(err error) error {
	switch e := err.(type) {
	case *gpx.HeaderError:
		return wrapErr(ErrBadHeader, "gpx", e.Error(), err)
	case *gpx.ContainerError:
		return wrapErr(ErrBadContainer, "gpx", e.Error(), err)
	default:
		if errors.Is(err, bytecursor.ErrTruncated) {
			return wrapErr(ErrTruncated, "gpx", "truncated input", err)
		}
		return wrapErr(ErrBadContainer, "gpx", "decode failed", err)
	}
}

func foldArchiveError(err error) error {
	switch e := err.(type) {
	case *archive.HeaderError:
		return wrapErr(ErrBadHeader, "archive", e.Error(), err)
	case *archive.UnsupportedCompressionError:
		return wrapErr(ErrUnsupportedCompression, "archive", e.Error(), err)
	case *inflate.CorruptError:
		return wrapErr(ErrCorruptDeflate, "inflate", e.Error(), err)
	default:
		if errors.Is(err, bytecursor.ErrTruncated) {
			return wrapErr(ErrTruncated, "archive", "truncated input", err)
		}
		return wrapErr(ErrBadContainer, "archive", "extract failed", err)
	}
}

func foldGpifError(err error) error {
	switch err.(type) {
	case *gpif.XMLError:
		return wrapErr(ErrBadXML, "gpif", err.Error(), err)
	default:
		return wrapErr(ErrBadXML, "gpif", "transform failed", err)
	}
}

func foldGp35Error(err error) error {
	switch err.(type) {
	case *gp35.VersionError:
		return wrapErr(ErrUnsupportedVersion, "gp35", err.Error(), err)
	default:
		if errors.Is(err, bytecursor.ErrTruncated) {
			return wrapErr(ErrTruncated, "gp35", "truncated input", err)
		}
		return wrapErr(ErrBadHeader, "gp35", "decode failed", err)
	}
}
