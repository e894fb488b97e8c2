package processor

import (
	"bytes"
	"encoding/binary"
	"github.com/disintegration/imaging"
	"image"
)

const orientationTag = 0x0112

// webpOrientation returns the EXIF orientation stored in a WebP container's
// EXIF chunk, or 1 when there is none or it cannot be read. imaging only
// reads orientation from JPEG.
func webpOrientation(data []byte) int {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return 1
	}

	for rest := data[12:]; len(rest) >= 8; {
		fourCC := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if size > len(rest) {
			return 1
		}

		if fourCC == "EXIF" {
			return tiffOrientation(bytes.TrimPrefix(rest[:size], []byte("Exif\x00\x00")))
		}

		// Chunks are padded to an even size.
		size += size & 1
		if size > len(rest) {
			return 1
		}
		rest = rest[size:]
	}

	return 1
}

// tiffOrientation reads the orientation tag from IFD0 of a TIFF-encoded EXIF block.
func tiffOrientation(tiff []byte) int {
	if len(tiff) < 8 {
		return 1
	}

	var order binary.ByteOrder
	switch string(tiff[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 1
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return 1
	}

	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return 1
	}

	count := int(order.Uint16(tiff[ifd : ifd+2]))
	for i := 0; i < count; i++ {
		entry := ifd + 2 + i*12
		if entry+12 > len(tiff) {
			return 1
		}
		if order.Uint16(tiff[entry:entry+2]) != orientationTag {
			continue
		}

		v := int(order.Uint16(tiff[entry+8 : entry+10]))
		if v < 1 || v > 8 {
			return 1
		}
		return v
	}

	return 1
}

// orient applies an EXIF orientation the same way imaging.AutoOrientation does.
func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}

	return img
}
