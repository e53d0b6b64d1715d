package app

// OpenAPISpec documents the scrape API, served through the Swagger UI at /docs
var OpenAPISpec = []byte(`openapi: "3.0.3"
info:
  title: Social Pulse API
  description: Social media profile metrics scraping service
  version: "1.0"
paths:
  /api/v1/scrape:
    post:
      summary: Scrape a profile by platform and username
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [platform, username]
              properties:
                platform:
                  type: string
                  enum: [instagram, twitter, x, facebook, tiktok, youtube, linkedin]
                username:
                  type: string
                  example: nasa
                profile_url:
                  type: string
                  description: Optional. Derived from platform and username when omitted.
      responses:
        "200":
          description: Scrape outcome. The success flag tells results and failures apart.
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/ScrapeEnvelope"
  /api/v1/scrape/url:
    post:
      summary: Scrape a profile by its URL
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [url]
              properties:
                url:
                  type: string
                  example: https://www.instagram.com/nasa/
      responses:
        "200":
          description: Scrape outcome
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/ScrapeEnvelope"
  /api/v1/scrapes:
    get:
      summary: List past scrapes, newest first
      parameters:
        - name: platform
          in: query
          schema:
            type: string
        - name: username
          in: query
          schema:
            type: string
        - name: source
          in: query
          schema:
            type: string
            enum: [vendor, synthetic]
        - name: limit
          in: query
          schema:
            type: integer
            default: 20
            maximum: 100
        - name: offset
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: One page of scrape history
        "400":
          description: Unknown platform or source filter
  /api/v1/scrapes/{id}:
    get:
      summary: Fetch one past scrape by record ID
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: The scrape record
        "404":
          description: No record with that ID
  /diagnostics/vendor:
    get:
      summary: Check the scraping vendor credentials
      responses:
        "200":
          description: Vendor account reachable, or vendor scraping disabled
        "502":
          description: Vendor unreachable or credentials rejected
components:
  schemas:
    ScrapeEnvelope:
      type: object
      properties:
        success:
          type: boolean
        data:
          $ref: "#/components/schemas/ProfileMetrics"
        error:
          type: string
        retry_after_seconds:
          type: integer
          description: Present when the failure was a rate limit
    ProfileMetrics:
      type: object
      properties:
        platform:
          type: string
        username:
          type: string
        profile_url:
          type: string
        followers:
          type: integer
        following:
          type: integer
        posts:
          type: integer
        engagement:
          type: number
          description: Percent
        growth:
          type: number
          description: Percent per month
        views:
          type: integer
        likes:
          type: integer
        comments:
          type: integer
        shares:
          type: integer
        daily_stats:
          type: array
          items:
            type: object
            properties:
              date:
                type: string
              followers:
                type: integer
              engagement:
                type: number
              views:
                type: integer
        content_performance:
          type: array
          items:
            type: object
            properties:
              id:
                type: string
              type:
                type: string
              title:
                type: string
              date:
                type: string
              likes:
                type: integer
              comments:
                type: integer
              shares:
                type: integer
              views:
                type: integer
        scrape_date:
          type: string
          format: date-time
`)
