package render

import "context"

type Renderer interface {
	RenderList(ctx context.Context, page ListPage) ([]byte, error)
	RenderPost(ctx context.Context, page PostPage) ([]byte, error)
	RenderStatic(ctx context.Context, page StaticPage) ([]byte, error)
	RenderMessage(ctx context.Context, page MessagePage) ([]byte, error)
}
