// Package imageio converts between image files and distance-field types.
//
// Source images are thresholded into [dfield.Bitmap] values. PNG, JPEG,
// GIF, BMP, TIFF and WebP are decoded through the image package (the last
// three via golang.org/x/image); netpbm bitmaps (P1 and P4) are decoded
// directly. In the other direction, [Gray] and [Heatmap] render a
// [dfield.Field] for inspection, and [SavePNG] writes the result.
//
//	bm, err := imageio.LoadBitmap("card-outline.png", imageio.Options{Threshold: 127})
//	if err != nil {
//	    return err
//	}
//	f, err := dfield.Generate(bm, 64, 64, 8)
package imageio
