package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned for 404s from the store. Callers treat it as
// "does not exist"; every other API error is fatal.
var ErrNotFound = errors.New("shopify: resource not found")

// Client is a Shopify Admin API client covering the product, variant and
// inventory operations the editor needs, plus the GraphQL channel used for
// catalog paging and inventory mutations.
type Client struct {
	httpClient  *http.Client
	storeURL    string
	accessToken string
	apiVersion  string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Shopify Admin API client. storeDomain is the bare
// store name ("my-store") or a full myshopify.com host.
func NewClient(storeDomain, accessToken, apiVersion string, requestsPerSecond int) *Client {
	if !strings.Contains(storeDomain, ".") {
		storeDomain = storeDomain + ".myshopify.com"
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		storeURL:    "https://" + storeDomain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// TestConnection verifies the credentials are working
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/shop.json", nil, nil)
	return err
}

// Variant is the Admin REST representation of a product variant. Prices are
// decimal strings on the wire.
type Variant struct {
	ID                  int64  `json:"id"`
	ProductID           int64  `json:"product_id"`
	Title               string `json:"title"`
	SKU                 string `json:"sku"`
	Barcode             string `json:"barcode"`
	Price               string `json:"price"`
	InventoryQuantity   int    `json:"inventory_quantity"`
	InventoryManagement string `json:"inventory_management"`
	InventoryItemID     int64  `json:"inventory_item_id"`
}

// Product is the Admin REST representation of a product
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Status   string    `json:"status"`
	Variants []Variant `json:"variants"`
}

// InventoryItem carries the unit cost for a variant
type InventoryItem struct {
	ID      int64  `json:"id"`
	Cost    string `json:"cost"`
	Tracked bool   `json:"tracked"`
}

// NewVariant is the variant payload for product creation
type NewVariant struct {
	Price               string `json:"price"`
	Barcode             string `json:"barcode,omitempty"`
	SKU                 string `json:"sku,omitempty"`
	InventoryManagement string `json:"inventory_management,omitempty"`
}

// NewProduct is the payload for product creation
type NewProduct struct {
	Title    string       `json:"title"`
	Status   string       `json:"status,omitempty"`
	Variants []NewVariant `json:"variants"`
}

// GetVariant fetches a single variant by ID. Returns ErrNotFound on 404.
func (c *Client) GetVariant(ctx context.Context, variantID string) (*Variant, error) {
	body, err := c.doRequest(ctx, "GET", fmt.Sprintf("/variants/%s.json", variantID), nil, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Variant Variant `json:"variant"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse variant response: %w", err)
	}
	return &response.Variant, nil
}

// UpdateVariant applies a partial update to a variant. fields holds only the
// attributes being changed, e.g. {"price": "19.95"}.
func (c *Client) UpdateVariant(ctx context.Context, variantID string, fields map[string]interface{}) (*Variant, error) {
	fields["id"] = variantID
	payload := map[string]interface{}{"variant": fields}

	body, err := c.doRequest(ctx, "PUT", fmt.Sprintf("/variants/%s.json", variantID), nil, payload)
	if err != nil {
		return nil, err
	}

	var response struct {
		Variant Variant `json:"variant"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse variant response: %w", err)
	}
	return &response.Variant, nil
}

// GetProduct fetches a single product by ID. Returns ErrNotFound on 404.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	body, err := c.doRequest(ctx, "GET", fmt.Sprintf("/products/%s.json", productID), nil, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	return &response.Product, nil
}

// UpdateProduct applies a partial update to a product
func (c *Client) UpdateProduct(ctx context.Context, productID string, fields map[string]interface{}) (*Product, error) {
	fields["id"] = productID
	payload := map[string]interface{}{"product": fields}

	body, err := c.doRequest(ctx, "PUT", fmt.Sprintf("/products/%s.json", productID), nil, payload)
	if err != nil {
		return nil, err
	}

	var response struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	return &response.Product, nil
}

// CreateProduct creates a product with its initial variant
func (c *Client) CreateProduct(ctx context.Context, product *NewProduct) (*Product, error) {
	payload := map[string]interface{}{"product": product}

	body, err := c.doRequest(ctx, "POST", "/products.json", nil, payload)
	if err != nil {
		return nil, err
	}

	var response struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	return &response.Product, nil
}

// DeleteProduct deletes a product and all its variants
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	_, err := c.doRequest(ctx, "DELETE", fmt.Sprintf("/products/%s.json", productID), nil, nil)
	return err
}

// UpdateInventoryItem updates an inventory item, typically its cost
func (c *Client) UpdateInventoryItem(ctx context.Context, inventoryItemID string, fields map[string]interface{}) (*InventoryItem, error) {
	fields["id"] = inventoryItemID
	payload := map[string]interface{}{"inventory_item": fields}

	body, err := c.doRequest(ctx, "PUT", fmt.Sprintf("/inventory_items/%s.json", inventoryItemID), nil, payload)
	if err != nil {
		return nil, err
	}

	var response struct {
		InventoryItem InventoryItem `json:"inventory_item"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse inventory item response: %w", err)
	}
	return &response.InventoryItem, nil
}

// ThrottleStatus is the GraphQL cost bucket state returned with each query
type ThrottleStatus struct {
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// GraphQLError is one error entry from a GraphQL response
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQL executes a query against the Admin GraphQL endpoint, unmarshals
// the data payload into out and returns the throttle status when the API
// reports one. Any GraphQL-level error is fatal.
func (c *Client) GraphQL(ctx context.Context, query string, out interface{}) (*ThrottleStatus, error) {
	payload := map[string]string{"query": query}

	body, err := c.doRequest(ctx, "POST", "/graphql.json", nil, payload)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data       json.RawMessage `json:"data"`
		Errors     []GraphQLError  `json:"errors"`
		Extensions struct {
			Cost struct {
				ThrottleStatus *ThrottleStatus `json:"throttleStatus"`
			} `json:"cost"`
		} `json:"extensions"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse graphql response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return nil, fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}

	if out != nil {
		if envelope.Data == nil {
			return nil, fmt.Errorf("graphql response missing data")
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return nil, fmt.Errorf("failed to parse graphql data: %w", err)
		}
	}

	return envelope.Extensions.Cost.ThrottleStatus, nil
}

// CatalogVariant is one variant node from a catalog page
type CatalogVariant struct {
	Barcode string `json:"barcode"`
	Price   string `json:"price"`
}

// CatalogProduct is one product node from a catalog page
type CatalogProduct struct {
	Title    string
	Variants []CatalogVariant
}

// CatalogPage is one page of the full-catalog walk
type CatalogPage struct {
	Products    []CatalogProduct
	HasNextPage bool
	EndCursor   string
	Throttle    *ThrottleStatus
}

const catalogPageQuery = `{
  products(first: 250, after: %s) {
    edges {
      node {
        title
        variants(first: 250) {
          edges {
            node {
              barcode
              price
            }
          }
        }
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

// FetchCatalogPage retrieves one page of products with their variant
// barcodes and prices. An empty cursor starts from the beginning. A
// response without the products/edges structure is malformed and fatal;
// there is no partial-result mode for barcode matching.
func (c *Client) FetchCatalogPage(ctx context.Context, cursor string) (*CatalogPage, error) {
	after := "null"
	if cursor != "" {
		after = fmt.Sprintf("%q", cursor)
	}
	query := fmt.Sprintf(catalogPageQuery, after)

	var data struct {
		Products *struct {
			Edges []struct {
				Node struct {
					Title    string `json:"title"`
					Variants *struct {
						Edges []struct {
							Node CatalogVariant `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	}

	throttle, err := c.GraphQL(ctx, query, &data)
	if err != nil {
		return nil, err
	}

	if data.Products == nil {
		return nil, fmt.Errorf("malformed catalog response: missing products")
	}
	if data.Products.Edges == nil {
		return nil, fmt.Errorf("malformed catalog response: missing edges")
	}

	page := &CatalogPage{
		HasNextPage: data.Products.PageInfo.HasNextPage,
		EndCursor:   data.Products.PageInfo.EndCursor,
		Throttle:    throttle,
	}
	for _, edge := range data.Products.Edges {
		product := CatalogProduct{Title: edge.Node.Title}
		if edge.Node.Variants != nil {
			for _, v := range edge.Node.Variants.Edges {
				product.Variants = append(product.Variants, v.Node)
			}
		}
		page.Products = append(page.Products, product)
	}
	return page, nil
}

const setOnHandMutation = `mutation {
  inventorySetOnHandQuantities(input: {
    reason: "correction",
    setQuantities: [{
      inventoryItemId: "gid://shopify/InventoryItem/%s",
      locationId: "gid://shopify/Location/%s",
      quantity: %d
    }]
  }) {
    userErrors {
      field
      message
    }
  }
}`

// SetOnHandQuantity sets the absolute on-hand quantity for an inventory
// item at a location.
func (c *Client) SetOnHandQuantity(ctx context.Context, inventoryItemID, locationID string, quantity int) error {
	mutation := fmt.Sprintf(setOnHandMutation, inventoryItemID, locationID, quantity)

	var data struct {
		InventorySetOnHandQuantities struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"inventorySetOnHandQuantities"`
	}
	if _, err := c.GraphQL(ctx, mutation, &data); err != nil {
		return err
	}
	if errs := data.InventorySetOnHandQuantities.UserErrors; len(errs) > 0 {
		return fmt.Errorf("inventory mutation rejected: %s", errs[0].Message)
	}
	return nil
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body interface{}) ([]byte, error) {
	// Rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := fmt.Sprintf("%s/admin/api/%s%s", c.storeURL, c.apiVersion, path)
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("Shopify API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
