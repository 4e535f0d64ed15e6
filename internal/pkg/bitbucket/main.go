package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pkgbump/internal/domain"
	"pkgbump/internal/domain/pullrequest"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const DefaultAPIURL = "https://api.bitbucket.org/2.0"

var (
	ErrMissingBitbucketCredentials = errors.New("bitbucket token or username and password are missing")
	ErrMissingMainBranch           = errors.New("repository has no main branch")
)

// APIError is a non-2xx answer of the Bitbucket API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitbucket responded %d: %s", e.StatusCode, e.Message)
}

type BitbucketCloudClient struct {
	rc *resty.Client
}

type ClientOptions struct {
	BaseURL  string
	Token    string
	Username string
	Password string
}

func New(o *ClientOptions) (*BitbucketCloudClient, error) {
	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetError(&bbError{})

	switch {
	case o.Token != "":
		rc.SetAuthToken(o.Token)
	case o.Username != "" && o.Password != "":
		rc.SetBasicAuth(o.Username, o.Password)
	default:
		return nil, ErrMissingBitbucketCredentials
	}

	rc.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		log.WithFields(log.Fields{
			"method": r.Request.Method,
			"url":    r.Request.URL,
			"status": r.StatusCode(),
			"took":   r.Time(),
		}).Debug("bitbucket request")
		return nil
	})

	return &BitbucketCloudClient{rc: rc}, nil
}

func (c *BitbucketCloudClient) request(ctx context.Context) *resty.Request {
	return c.rc.R().SetContext(ctx)
}

func repoParams(repo domain.Repository) map[string]string {
	return map[string]string{
		"workspace": repo.Workspace,
		"repo":      repo.Name,
	}
}

// apiError extracts error.message from a Bitbucket error payload.
func apiError(r *resty.Response) error {
	msg := gjson.GetBytes(r.Body(), "error.message").String()
	if msg == "" {
		msg = strings.TrimSpace(string(r.Body()))
	}
	if msg == "" {
		msg = http.StatusText(r.StatusCode())
	}

	return &APIError{StatusCode: r.StatusCode(), Message: msg}
}

func (c *BitbucketCloudClient) DefaultBranch(ctx context.Context, repo domain.Repository) (string, error) {
	r, err := c.request(ctx).
		SetPathParams(repoParams(repo)).
		Get("/repositories/{workspace}/{repo}")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", apiError(r)
	}

	name := gjson.GetBytes(r.Body(), "mainbranch.name").String()
	if name == "" {
		return "", errors.Wrap(ErrMissingMainBranch, repo.String())
	}

	return name, nil
}

func (c *BitbucketCloudClient) GetCurrentUser(ctx context.Context) (string, error) {
	r, err := c.request(ctx).Get("/user")
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", apiError(r)
	}

	return gjson.GetBytes(r.Body(), "uuid").String(), nil
}

func (c *BitbucketCloudClient) GetDefaultReviewers(ctx context.Context, repo domain.Repository) ([]*Reviewer, error) {
	it := newBitbucketIterator(&newBitbucketIteratorOptions[*Reviewer]{
		Client:     c,
		RequestURL: "/repositories/{workspace}/{repo}/default-reviewers",
		PathParams: repoParams(repo),
		Parse: func(_, value gjson.Result) (*Reviewer, error) {
			rv := &Reviewer{}
			if err := json.Unmarshal([]byte(value.Raw), rv); err != nil {
				return nil, err
			}
			return rv, nil
		},
	})

	return it.GetAll(ctx)
}

func (c *BitbucketCloudClient) reviewers(ctx context.Context, repo domain.Repository) ([]bbPROptionsReviewer, error) {
	dr, err := c.GetDefaultReviewers(ctx, repo)
	if err != nil {
		return nil, err
	}

	self, err := c.GetCurrentUser(ctx)
	if err != nil {
		// Repository access tokens have no user.
		log.WithError(err).Debug("cannot resolve the current user")
	}

	ddr := make([]bbPROptionsReviewer, 0, len(dr))
	for _, v := range dr {
		if v.UUID != self {
			ddr = append(ddr, bbPROptionsReviewer{UUID: v.UUID})
		}
	}

	return ddr, nil
}

func unmarshalPR(data []byte) (*pullrequest.Entity, error) {
	pr := &bitbucketPullRequest{}
	err := json.Unmarshal(data, pr)
	if err != nil {
		return nil, err
	}

	return &pullrequest.Entity{
		ID:          pullrequest.EntityID(fmt.Sprint(pr.ID)),
		Title:       pr.Title,
		Description: pr.Description,
		URL:         pr.Links.HTML.Href,
		State:       pr.State,
		Source:      pr.Source.Branch.Name,
		Destination: pr.Destination.Branch.Name,
		CloseBranch: pr.CloseSourceBranch,
		Created:     pr.CreatedOn,
		Updated:     pr.UpdatedOn,
	}, nil
}

func (c *BitbucketCloudClient) Create(ctx context.Context, o *pullrequest.CreateOptions) (*pullrequest.Entity, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	body := bbPROptions{
		Title:             o.Title,
		Description:       o.Description,
		CloseSourceBranch: o.CloseBranch,
		Source:            bbPRSourceOptions{Branch: bbPRBranchOptions{Name: o.Source}},
		Destination:       bbPRSourceOptions{Branch: bbPRBranchOptions{Name: o.Destination}},
	}

	if o.DefaultReviewers {
		rv, err := c.reviewers(ctx, o.Repository)
		if err != nil {
			return nil, errors.Wrap(err, "cannot load default reviewers")
		}
		body.Reviewers = rv
	}

	r, err := c.request(ctx).
		SetPathParams(repoParams(o.Repository)).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/repositories/{workspace}/{repo}/pullrequests")
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, apiError(r)
	}

	log.WithField("source", o.Source).Debug("pull request created")

	return unmarshalPR(r.Body())
}
