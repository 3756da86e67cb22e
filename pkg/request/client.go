package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// headerKeyRequestID はリクエストを追跡するためのHTTPヘッダーキー。
const headerKeyRequestID = "X-Request-ID"

// Client は管理画面からバックエンドAPIを呼び出す共有HTTPクライアント。
// プロセス内で一度だけ生成し、参照で共有する。並行して使用できる。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// config はベースURLとタイムアウトの設定。
	config Config
	// tokens は認証トークンの取得元。
	tokens TokenStore
	// session はセッション切れ時にログアウトさせるセッション。
	session SessionStore
	// notifier はエラーメッセージの表示先。
	notifier Notifier
	// reload はログアウト後に呼び出す処理。
	reload func()
	// messages はステータスコードとメッセージの対応表。
	messages Messages
}

// New は新しいクライアントを生成する。
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		config:     cfg.withDefaults(),
		messages:   DefaultMessages(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(c)
		}
	}
	return c
}

// Defaults は現在のトークンを反映した送信時のデフォルト値を返す。
func (c *Client) Defaults() Descriptor {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}
	return Descriptor{
		Method:       http.MethodGet,
		BaseURL:      c.config.BaseURL,
		Headers:      headers,
		Body:         map[string]any{},
		ResponseType: ResponseTypeJSON,
		Timeout:      c.config.Timeout,
	}
}

// Do はデフォルト値に指定をマージしてリクエストを送信し、レスポンスを分類する。
// codeが0の場合はエンベロープを、バイナリ指定の場合はボディをそのまま返す。
// それ以外の場合はエラーを返す。codeが401の場合はログアウトさせてErrTokenExpiredを返し、
// それ以外のエラーはユーザーに通知してから返す。
func (c *Client) Do(ctx context.Context, d Descriptor) (*Result, error) {
	merged := Merge(c.Defaults(), d)

	status, body, err := c.send(ctx, merged)
	if err != nil {
		return nil, c.fail(err)
	}
	if status < 200 || status >= 300 {
		return nil, c.fail(&TransportError{
			Method:     merged.method(),
			URL:        merged.URL,
			StatusCode: status,
			Message:    messageFromBody(body),
		})
	}
	return c.classify(merged, body)
}

// Request はリクエストを送信し、エンベロープのdataをTにデシリアライズして返す。
func Request[T any](ctx context.Context, c *Client, d Descriptor) (*Envelope[T], error) {
	res, err := c.Do(ctx, d)
	if err != nil {
		return nil, err
	}
	if res.Envelope == nil {
		return nil, c.fail(&EnvelopeError{
			StatusCode: http.StatusInternalServerError,
			Message:    MessageMalformed,
			Cause:      errors.New("バイナリ指定のレスポンスはエンベロープとして扱えない"),
		})
	}

	out := &Envelope[T]{Code: res.Envelope.Code, Message: res.Envelope.Message}
	if len(res.Envelope.Data) > 0 {
		if err := json.Unmarshal(res.Envelope.Data, &out.Data); err != nil {
			return nil, c.fail(&EnvelopeError{
				StatusCode: http.StatusInternalServerError,
				Message:    MessageMalformed,
				Cause:      fmt.Errorf("dataのデシリアライズに失敗: %w", err),
			})
		}
	}
	return out, nil
}

// Download はレスポンスをバイナリとして受け取り、ボディをそのまま返す。
// ResponseTypeがバイナリ指定でない場合はblobとして扱う。
func Download(ctx context.Context, c *Client, d Descriptor) ([]byte, error) {
	if !d.ResponseType.IsBinary() {
		d.ResponseType = ResponseTypeBlob
	}
	res, err := c.Do(ctx, d)
	if err != nil {
		return nil, err
	}
	return res.Raw, nil
}

// send はリクエストを送信し、ステータスコードとボディを返す。
// レスポンスを受信できなかった場合はTransportErrorを返す。
func (c *Client) send(ctx context.Context, d Descriptor) (int, []byte, error) {
	method := d.method()
	target, err := resolveURL(d.BaseURL, d.URL, d.Params)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: d.URL, Cause: err}
	}

	var bodyReader io.Reader
	if d.hasBody() {
		jsonBody, err := json.Marshal(d.Body)
		if err != nil {
			return 0, nil, &TransportError{
				Method: method,
				URL:    target,
				Cause:  fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err),
			}
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return 0, nil, &TransportError{
			Method: method,
			URL:    target,
			Cause:  fmt.Errorf("HTTPリクエストの作成に失敗: %w", err),
		}
	}
	for k, v := range d.Headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get(headerKeyRequestID) == "" {
		req.Header.Set(headerKeyRequestID, uuid.New().String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{
			Method: method,
			URL:    target,
			Cause:  fmt.Errorf("HTTPリクエストの送信に失敗: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err),
		}
	}
	return resp.StatusCode, body, nil
}

// classify は2xxレスポンスのボディを成功・セッション切れ・エラーに分類する。
func (c *Client) classify(d Descriptor, body []byte) (*Result, error) {
	if d.ResponseType.IsBinary() {
		return &Result{Raw: body}, nil
	}

	env, err := decodeEnvelope(body)
	if errors.Is(err, errMalformed) {
		return nil, c.fail(&EnvelopeError{
			StatusCode: http.StatusInternalServerError,
			Message:    MessageMalformed,
			Cause:      err,
		})
	}
	if err != nil {
		return nil, c.fail(&EnvelopeError{
			StatusCode: http.StatusInternalServerError,
			Message:    MessageForeign,
			Cause:      err,
		})
	}

	switch env.Code {
	case CodeSuccess:
		return &Result{Envelope: env}, nil
	case CodeTokenExpired:
		log.Printf("[Request] セッションの有効期限切れ: method=%s, url=%s", d.method(), d.URL)
		c.expireSession()
		return nil, ErrTokenExpired
	default:
		message := env.Message
		if message == "" {
			message = MessageApplicationDefault
		}
		return nil, c.fail(&ApplicationError{
			Code:     env.Code,
			Message:  message,
			Envelope: env,
		})
	}
}

// fail はエラーに対応するメッセージをユーザーに通知し、元のエラーをそのまま返す。
func (c *Client) fail(err error) error {
	message := c.messages.messageFor(err)
	log.Printf("[Request] リクエストに失敗: message=%s, error=%v", message, err)
	if c.notifier != nil {
		c.notifier.Error(message)
	}
	return err
}

// expireSession はログアウトさせた後、ログイン画面に戻すための処理を呼び出す。
func (c *Client) expireSession() {
	if c.session != nil {
		c.session.Logout()
	}
	if c.reload != nil {
		c.reload()
	}
}

// resolveURL はベースURLとパスを結合し、クエリパラメータを付与したURLを返す。
// pathが絶対URLの場合はbaseを無視する。
func resolveURL(base, path string, params map[string]string) (string, error) {
	raw := path
	if u, err := url.Parse(path); err != nil || !u.IsAbs() {
		switch {
		case path == "":
			raw = base
		case base != "":
			raw = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("URLの解析に失敗: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// messageFromBody はエラーレスポンスのボディからmessageを取り出す。
// ボディがJSONオブジェクトでない場合は空文字列を返す。
func messageFromBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
