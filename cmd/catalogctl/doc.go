// Command catalogctl browses the books on a removable volume from a terminal.
//
// Usage:
//
//	catalogctl [--volume=/media/sdcard,...] [--demo] <command>
//
// Commands:
//
//	ls [folder]             list a folder, subfolders first (-l adds descriptions)
//	search <query> [--in]   case-insensitive title search within one folder
//	volume                  report presence and count books by format
//
// Folders are entered one level at a time, exactly as a catalog client
// would, so a folder hidden from the listing cannot be reached. Output is
// sized to the terminal when stdout is one.
package main
