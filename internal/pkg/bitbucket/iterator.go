package bitbucket

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// bitbucketIterator allows iterating over
// a paged response of a Bitbucket API call
type bitbucketIterator[T any] struct {
	Client     *BitbucketCloudClient
	RequestURL string
	PathParams map[string]string
	Parse      func(key, value gjson.Result) (T, error)
	hasNext    bool
	nextURL    string
}

type newBitbucketIteratorOptions[T any] struct {
	Client     *BitbucketCloudClient
	RequestURL string
	PathParams map[string]string
	Parse      func(key, value gjson.Result) (T, error)
}

func newBitbucketIterator[T any](options *newBitbucketIteratorOptions[T]) *bitbucketIterator[T] {
	return &bitbucketIterator[T]{
		Client:     options.Client,
		RequestURL: options.RequestURL,
		PathParams: options.PathParams,
		Parse:      options.Parse,
		hasNext:    true,
	}
}

func (i *bitbucketIterator[T]) HasNext() bool {
	return i.hasNext
}

// GetAll returns a list values from all pages
func (i *bitbucketIterator[T]) GetAll(ctx context.Context) ([]T, error) {
	result := []T{}
	for i.HasNext() {
		lists, err := i.Next(ctx)
		if err != nil {
			return nil, err
		}

		result = append(result, lists...)
	}

	return result, nil
}

func (i *bitbucketIterator[T]) sendRequest(request *resty.Request, url string) ([]T, error) {
	r, err := request.Get(url)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, apiError(r)
	}
	parsed := gjson.ParseBytes(r.Body())

	i.nextURL = parsed.Get("next").String()
	if i.nextURL == "" {
		i.hasNext = false
	}

	return i.parse(parsed)
}

func (i *bitbucketIterator[T]) parse(parsed gjson.Result) ([]T, error) {
	list := []T{}

	var err error
	parsed.Get("values").ForEach(func(key, value gjson.Result) bool {
		var obj T
		obj, err = i.Parse(key, value)
		if err != nil {
			return false
		}

		list = append(list, obj)
		return true
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (i *bitbucketIterator[T]) doInitialCall(ctx context.Context) ([]T, error) {
	const pageLength = 50

	r := i.Client.request(ctx).
		SetPathParams(i.PathParams).
		SetQueryParam("pagelen", fmt.Sprint(pageLength))

	return i.sendRequest(r, i.RequestURL)
}

func (i *bitbucketIterator[T]) doNextCall(ctx context.Context) ([]T, error) {
	return i.sendRequest(i.Client.request(ctx), i.nextURL)
}

func (i *bitbucketIterator[T]) Next(ctx context.Context) ([]T, error) {
	if !i.hasNext {
		return nil, nil
	}

	if i.nextURL == "" {
		return i.doInitialCall(ctx)
	}

	return i.doNextCall(ctx)
}
