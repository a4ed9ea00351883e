package main

import (
	"fmt"

	"book-catalog/internal/storage/memory"
)

func demoFB2(title, first, last, annotation string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
<description><title-info>
<author><first-name>%s</first-name><last-name>%s</last-name></author>
<book-title>%s</book-title>
<annotation><p>%s</p></annotation>
</title-info></description>
<body><section><p>...</p></section></body>
</FictionBook>`, first, last, title, annotation))
}

// demoVolume is a small sample card for trying the CLI without a mount.
func demoVolume() *memory.Volume {
	v := memory.New()
	v.AddFile("Classics/Russian/war-and-peace.fb2",
		demoFB2("War and Peace", "Leo", "Tolstoy", "Napoleon invades Russia; five families live through it."))
	v.AddFile("Classics/Russian/anna-karenina.fb2",
		demoFB2("Anna Karenina", "Leo", "Tolstoy", "Happy families are all alike."))
	v.AddFile("Classics/moby-dick.txt",
		[]byte("Call me Ishmael. Some years ago, never mind how long precisely...\n\nChapter 2"))
	v.AddFile("Poetry/odes.fb2",
		demoFB2("Odes", "John", "Keats", "Six odes written in 1819."))
	v.AddFile("README.txt", []byte("Sample volume for catalogctl --demo."))
	v.AddFolder("Inbox")
	return v
}
