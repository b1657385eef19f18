// Package feishu は飛書（Lark）オープンプラットフォームの認証APIクライアントを提供する。
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hm-community/hmnet/internal/model"
)

// 飛書オープンプラットフォームのエンドポイントパス。
const (
	appAccessTokenPath    = "/open-apis/auth/v3/app_access_token/internal"
	tenantAccessTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"
	userAccessTokenPath   = "/open-apis/authen/v1/access_token"
	userInfoPath          = "/open-apis/authen/v1/user_info"
	jsapiTicketPath       = "/open-apis/jssdk/ticket/get"
)

// UpstreamAuthError は飛書側が返したエラーを表す。
// 非200ステータス、またはレスポンスボディのcodeが0以外の場合に返る。
type UpstreamAuthError struct {
	StatusCode int    // HTTPステータスコード
	Code       int    // 飛書のアプリケーションエラーコード
	Msg        string // 飛書のエラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("feishu api error: status=%d code=%d msg=%s", e.StatusCode, e.Code, e.Msg)
}

// Config はClientの設定。
type Config struct {
	Host      string // 飛書オープンプラットフォームのホスト（例: "https://open.feishu.cn"）
	AppID     string
	AppSecret string

	// テスト用にオーバーライド可能なHTTPクライアント
	HTTPClient *http.Client
}

// Client は飛書認証APIのクライアント。
// すべての呼び出しは1往復の同期呼び出しで、リトライは行わない。
// タイムアウトは渡されたcontextで制御する。
type Client struct {
	config Config
}

// NewClient はClientを生成する。
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &Client{config: config}
}

// envelope は飛書APIレスポンスの共通部分。
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// appAccessTokenResponse はapp_access_tokenエンドポイントのレスポンス。
type appAccessTokenResponse struct {
	envelope
	AppAccessToken string `json:"app_access_token"`
}

// tenantAccessTokenResponse はtenant_access_tokenエンドポイントのレスポンス。
type tenantAccessTokenResponse struct {
	envelope
	TenantAccessToken string `json:"tenant_access_token"`
}

// userAccessTokenResponse はuser access tokenエンドポイントのレスポンス。
type userAccessTokenResponse struct {
	envelope
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// userInfoResponse はuser_infoエンドポイントのレスポンス。
type userInfoResponse struct {
	envelope
	Data model.Profile `json:"data"`
}

// jsapiTicketResponse はjsapi ticketエンドポイントのレスポンス。
type jsapiTicketResponse struct {
	envelope
	Data struct {
		Ticket string `json:"ticket"`
	} `json:"data"`
}

// AppAccessToken はアプリIDとシークレットをapp_access_tokenに交換する。
func (c *Client) AppAccessToken(ctx context.Context) (string, error) {
	var resp appAccessTokenResponse
	err := c.do(ctx, http.MethodPost, appAccessTokenPath, "", map[string]string{
		"app_id":     c.config.AppID,
		"app_secret": c.config.AppSecret,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to get app access token: %w", err)
	}
	if resp.AppAccessToken == "" {
		return "", fmt.Errorf("empty app access token in response")
	}
	return resp.AppAccessToken, nil
}

// TenantAccessToken はアプリIDとシークレットをtenant_access_tokenに交換する。
// クライアントサイド検証チケットの取得に必要となる。
func (c *Client) TenantAccessToken(ctx context.Context) (string, error) {
	var resp tenantAccessTokenResponse
	err := c.do(ctx, http.MethodPost, tenantAccessTokenPath, "", map[string]string{
		"app_id":     c.config.AppID,
		"app_secret": c.config.AppSecret,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to get tenant access token: %w", err)
	}
	if resp.TenantAccessToken == "" {
		return "", fmt.Errorf("empty tenant access token in response")
	}
	return resp.TenantAccessToken, nil
}

// UserAccessToken は認可コードをユーザーアクセストークンに交換する。
// 交換にはapp_access_tokenが必要なため、先に取得してリクエストヘッダーに載せる。
func (c *Client) UserAccessToken(ctx context.Context, code string) (string, error) {
	appToken, err := c.AppAccessToken(ctx)
	if err != nil {
		return "", err
	}

	var resp userAccessTokenResponse
	err = c.do(ctx, http.MethodPost, userAccessTokenPath, appToken, map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if resp.Data.AccessToken == "" {
		return "", fmt.Errorf("empty user access token in response")
	}
	return resp.Data.AccessToken, nil
}

// UserInfo はユーザーアクセストークンでプロフィールを取得する。
func (c *Client) UserInfo(ctx context.Context, userToken string) (*model.Profile, error) {
	var resp userInfoResponse
	if err := c.do(ctx, http.MethodGet, userInfoPath, userToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if resp.Data.OpenID == "" {
		return nil, fmt.Errorf("empty open_id in user info response")
	}
	return &resp.Data, nil
}

// ExchangeCode は認可コードをトークンに交換し、プロフィールを取得する。
func (c *Client) ExchangeCode(ctx context.Context, code string) (*model.Profile, error) {
	userToken, err := c.UserAccessToken(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.UserInfo(ctx, userToken)
}

// JSAPITicket はクライアントサイド検証用のjsapi ticketを取得する。
// tenant_access_tokenを必要とする。
func (c *Client) JSAPITicket(ctx context.Context) (string, error) {
	tenantToken, err := c.TenantAccessToken(ctx)
	if err != nil {
		return "", err
	}

	var resp jsapiTicketResponse
	if err := c.do(ctx, http.MethodPost, jsapiTicketPath, tenantToken, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to get jsapi ticket: %w", err)
	}
	return resp.Data.Ticket, nil
}

// do は飛書APIを1回呼び出し、共通のエラー契約を適用する。
// bearerが空でない場合はAuthorizationヘッダーに載せる。
// 非200ステータス、またはボディのcodeが0以外の場合は*UpstreamAuthErrorを返す。
func (c *Client) do(ctx context.Context, method, path, bearer string, reqBody any, out any) error {
	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Host+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &UpstreamAuthError{StatusCode: resp.StatusCode, Code: -1, Msg: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Code != 0 {
		return &UpstreamAuthError{StatusCode: resp.StatusCode, Code: env.Code, Msg: env.Msg}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
