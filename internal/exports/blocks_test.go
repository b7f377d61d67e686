package exports

import (
	"reflect"
	"testing"
)

func TestParseBlocksExtractsBlockElements(t *testing.T) {
	fragment := `<h1>Title</h1><p>Intro text</p><ul><li>first</li><li>second</li></ul><h3>Sub</h3><div>Outro</div>`

	got := ParseBlocks(fragment)
	want := []Block{
		{Kind: BlockHeading, Level: 1, Text: "Title"},
		{Kind: BlockParagraph, Text: "Intro text"},
		{Kind: BlockBullet, Text: "first"},
		{Kind: BlockBullet, Text: "second"},
		{Kind: BlockHeading, Level: 3, Text: "Sub"},
		{Kind: BlockParagraph, Text: "Outro"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("blocks mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestParseBlocksToleratesMalformedHTML(t *testing.T) {
	got := ParseBlocks(`<p>unclosed <b>bold<p>next`)
	if len(got) < 1 {
		t.Fatalf("expected blocks from malformed markup, got none")
	}
	if got[0].Text != "unclosed bold" {
		t.Fatalf("unexpected first block %q", got[0].Text)
	}
}

func TestParseBlocksBareTextBecomesParagraph(t *testing.T) {
	got := ParseBlocks("just some text")
	if len(got) != 1 || got[0].Kind != BlockParagraph || got[0].Text != "just some text" {
		t.Fatalf("unexpected blocks %#v", got)
	}
}

func TestParseBlocksEmptyInput(t *testing.T) {
	if got := ParseBlocks("   "); len(got) != 0 {
		t.Fatalf("expected no blocks, got %#v", got)
	}
}

func TestParseBlocksContainerDivIsNotAParagraph(t *testing.T) {
	got := ParseBlocks(`<div><p>inner one</p><p>inner two</p></div>`)
	want := []Block{
		{Kind: BlockParagraph, Text: "inner one"},
		{Kind: BlockParagraph, Text: "inner two"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("blocks mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestBlocksFromPlainText(t *testing.T) {
	got := BlocksFromPlainText("line one\n\nline two\n")
	want := []Block{
		{Kind: BlockParagraph, Text: "line one"},
		{Kind: BlockParagraph, Text: "line two"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("blocks mismatch:\n got %#v\nwant %#v", got, want)
	}
}
