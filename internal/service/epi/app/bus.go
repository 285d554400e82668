package app

import (
	"context"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/commands"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/app/queries"
)

type CommandBus interface {
	UpdateHTMLContent(ctx context.Context, cmd commands.UpdateHTMLContentCommand) (commands.BundleResult, error)
	UpdateSectionHTML(ctx context.Context, cmd commands.UpdateSectionHTMLCommand) (commands.BundleResult, error)
	ReplaceHTMLSpan(ctx context.Context, cmd commands.ReplaceHTMLSpanCommand) (commands.ReplaceHTMLSpanResult, error)
	WrapHTML(ctx context.Context, cmd commands.WrapHTMLCommand) (commands.WrapHTMLResult, error)
	AddElementLink(ctx context.Context, cmd commands.AddElementLinkCommand) (commands.BundleResult, error)
	RemoveElementLink(ctx context.Context, cmd commands.RemoveElementLinkCommand) (commands.BundleResult, error)
}

type QueryBus interface {
	HTMLContent(ctx context.Context, q queries.HTMLContentQuery) (queries.HTMLContentResult, error)
	ExtractAllContent(ctx context.Context, q queries.ExtractAllContentQuery) (queries.ExtractAllContentResult, error)
	ExportMarkdown(ctx context.Context, q queries.ExportMarkdownQuery) (queries.ExportMarkdownResult, error)
	ListElementLinks(ctx context.Context, q queries.ListElementLinksQuery) (queries.ListElementLinksResult, error)
	GetElementLink(ctx context.Context, q queries.GetElementLinkQuery) (queries.GetElementLinkResult, error)
	AnalyzeHTML(ctx context.Context, q queries.AnalyzeHTMLQuery) (queries.AnalyzeHTMLResult, error)
	FindElements(ctx context.Context, q queries.FindElementsQuery) (queries.FindElementsResult, error)
}

type commandBus struct {
	updateHTMLContent commands.UpdateHTMLContentHandler
	updateSectionHTML commands.UpdateSectionHTMLHandler
	replaceHTMLSpan   commands.ReplaceHTMLSpanHandler
	wrapHTML          commands.WrapHTMLHandler
	addElementLink    commands.AddElementLinkHandler
	removeElementLink commands.RemoveElementLinkHandler
}

type queryBus struct {
	htmlContent       queries.HTMLContentQueryHandler
	extractAllContent queries.ExtractAllContentQueryHandler
	exportMarkdown    queries.ExportMarkdownQueryHandler
	listElementLinks  queries.ListElementLinksQueryHandler
	getElementLink    queries.GetElementLinkQueryHandler
	analyzeHTML       queries.AnalyzeHTMLQueryHandler
	findElements      queries.FindElementsQueryHandler
}

func NewCommandBus(
	updateHTMLContent commands.UpdateHTMLContentHandler,
	updateSectionHTML commands.UpdateSectionHTMLHandler,
	replaceHTMLSpan commands.ReplaceHTMLSpanHandler,
	wrapHTML commands.WrapHTMLHandler,
	addElementLink commands.AddElementLinkHandler,
	removeElementLink commands.RemoveElementLinkHandler,
) CommandBus {
	return &commandBus{
		updateHTMLContent: updateHTMLContent,
		updateSectionHTML: updateSectionHTML,
		replaceHTMLSpan:   replaceHTMLSpan,
		wrapHTML:          wrapHTML,
		addElementLink:    addElementLink,
		removeElementLink: removeElementLink,
	}
}

func NewQueryBus(
	htmlContent queries.HTMLContentQueryHandler,
	extractAllContent queries.ExtractAllContentQueryHandler,
	exportMarkdown queries.ExportMarkdownQueryHandler,
	listElementLinks queries.ListElementLinksQueryHandler,
	getElementLink queries.GetElementLinkQueryHandler,
	analyzeHTML queries.AnalyzeHTMLQueryHandler,
	findElements queries.FindElementsQueryHandler,
) QueryBus {
	return &queryBus{
		htmlContent:       htmlContent,
		extractAllContent: extractAllContent,
		exportMarkdown:    exportMarkdown,
		listElementLinks:  listElementLinks,
		getElementLink:    getElementLink,
		analyzeHTML:       analyzeHTML,
		findElements:      findElements,
	}
}

func (b *commandBus) UpdateHTMLContent(ctx context.Context, cmd commands.UpdateHTMLContentCommand) (commands.BundleResult, error) {
	return b.updateHTMLContent.Handle(ctx, cmd)
}

func (b *commandBus) UpdateSectionHTML(ctx context.Context, cmd commands.UpdateSectionHTMLCommand) (commands.BundleResult, error) {
	return b.updateSectionHTML.Handle(ctx, cmd)
}

func (b *commandBus) ReplaceHTMLSpan(ctx context.Context, cmd commands.ReplaceHTMLSpanCommand) (commands.ReplaceHTMLSpanResult, error) {
	return b.replaceHTMLSpan.Handle(ctx, cmd)
}

func (b *commandBus) WrapHTML(ctx context.Context, cmd commands.WrapHTMLCommand) (commands.WrapHTMLResult, error) {
	return b.wrapHTML.Handle(ctx, cmd)
}

func (b *commandBus) AddElementLink(ctx context.Context, cmd commands.AddElementLinkCommand) (commands.BundleResult, error) {
	return b.addElementLink.Handle(ctx, cmd)
}

func (b *commandBus) RemoveElementLink(ctx context.Context, cmd commands.RemoveElementLinkCommand) (commands.BundleResult, error) {
	return b.removeElementLink.Handle(ctx, cmd)
}

func (b *queryBus) HTMLContent(ctx context.Context, q queries.HTMLContentQuery) (queries.HTMLContentResult, error) {
	return b.htmlContent.Handle(ctx, q)
}

func (b *queryBus) ExtractAllContent(ctx context.Context, q queries.ExtractAllContentQuery) (queries.ExtractAllContentResult, error) {
	return b.extractAllContent.Handle(ctx, q)
}

func (b *queryBus) ExportMarkdown(ctx context.Context, q queries.ExportMarkdownQuery) (queries.ExportMarkdownResult, error) {
	return b.exportMarkdown.Handle(ctx, q)
}

func (b *queryBus) ListElementLinks(ctx context.Context, q queries.ListElementLinksQuery) (queries.ListElementLinksResult, error) {
	return b.listElementLinks.Handle(ctx, q)
}

func (b *queryBus) GetElementLink(ctx context.Context, q queries.GetElementLinkQuery) (queries.GetElementLinkResult, error) {
	return b.getElementLink.Handle(ctx, q)
}

func (b *queryBus) AnalyzeHTML(ctx context.Context, q queries.AnalyzeHTMLQuery) (queries.AnalyzeHTMLResult, error) {
	return b.analyzeHTML.Handle(ctx, q)
}

func (b *queryBus) FindElements(ctx context.Context, q queries.FindElementsQuery) (queries.FindElementsResult, error) {
	return b.findElements.Handle(ctx, q)
}
