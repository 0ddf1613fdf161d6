// Package codec turns capture records into the bytes stored on disk.
//
// A record is encoded with the protobuf wire format and then passed through a
// streaming block-compression filter. Three filters are supported:
//
//	lz4   LZ4 frame format (default)   magic 04 22 4D 18
//	zstd  Zstandard frame              magic 28 B5 2F FD
//	s2    S2 stream                    magic FF 06 00 00 "S2sTwO"
//
// Decoding sniffs the magic, so a store written with mixed settings stays
// readable after a configuration change.
//
// Wire schema (field numbers):
//
//	CaptureRecord   1 timestamp  2 packageName  3 windowId  4 windowTitle
//	                5 windowType  6 textFocusedData
//	TextFocusedData 1 timestamp  2 packageName  3 textData (repeated)
//	                4 screenSummary
//	TextElement     1 text  2 type  3 isClickable  4 isEditable  5 className
//	                6 depth  7 x  8 y  9 width  10 height
//	ScreenSummary   1 combinedText  2 elementCounts  3 hasEmailField
//	                4 hasPasswordField  5 hasSearchField  6 clickableCount
//	                7 editableCount
//	ElementCounts   1 counts (map<string,int32>)
package codec
