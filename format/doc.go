// Package format maps guest Latte pixel formats to host texture formats.
//
// A guest surface is described by a Descriptor: the data format (bit
// layout), the number format (normalized, integer or scaled), the component
// signedness and the degamma flag. MapStorage picks the host storage format
// for a descriptor and MapTransfer reports the channel layout and element
// type of the guest texels. Both are driven by a single data table over the
// closed DataFormat enumeration; combinations absent from the table are
// reported as ErrUnsupported and are fatal to the caller.
//
// Some guest layouts have no host equivalent (three-channel formats,
// 5_6_5, 4_4_4_4 and friends). Those are stored in a four-channel host
// format and converted on upload by Expand.
//
// Validate checks the whole table and is run once at startup.
package format
