// Package audience is a Go client for the audience recommendation API.
//
//	client, _ := audience.New("http://localhost:8080", audience.WithAPIKey("secret"))
//	rec, err := client.Recommend(ctx, audience.RecommendRequest{
//		Query: "students in Kazan, 18-22",
//		TopK:  20,
//	})
//	if errors.Is(err, audience.ErrNoValidProfiles) {
//		// nobody matched the criteria
//	}
//	for _, item := range rec.Items {
//		fmt.Println(item.UserID, item.Similarity)
//	}
//
// Errors returned by the server are *APIError values that also match the
// package sentinels with errors.Is.
package audience
