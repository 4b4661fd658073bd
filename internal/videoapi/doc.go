// Package videoapi provides an HTTP client for the remote video storage API.
//
// # Overview
//
// The storage server is an external collaborator. vidlift only consumes its
// contract:
//
//   - GET    <list_path>          JSON array of video records
//   - POST   <upload_path>        multipart form, field "video"
//   - DELETE <delete_path>/<id>   remove one record
//   - GET    <static_base>/<file> stored bytes, used as a playback URL
//
// # Client Usage
//
//	client, err := videoapi.NewClient(videoapi.Options{BaseURL: "http://localhost:5000"})
//	if err != nil {
//		return err
//	}
//
//	videos, err := client.FetchVideos(ctx)
//
//	file, err := media.Open("~/Movies/clip.mp4")
//	err = client.Upload(ctx, file, func(sent, total int64) {
//		fmt.Printf("%d/%d\n", sent, total)
//	})
//
// # Request Handling
//
// Every request carries a User-Agent of the form vidlift/<version> and a
// fresh X-Request-ID, which is also written to the log so a failed call can
// be matched against server logs.
//
// List and delete calls are bounded by Options.RequestTimeout. Uploads are
// streamed through an io.Pipe so large files are never held in memory, and
// are bounded only by the caller's context. Progress is reported in payload
// bytes (multipart framing is not counted), after the transport has consumed
// them, so the final callback equals the file size.
//
// # Error Handling
//
// Any response outside 2xx is returned as *StatusError. Network failures and
// decode failures are wrapped with the step that failed ("execute request",
// "decode response"). The client never retries.
//
// # Records
//
// VideoRecord accepts either "_id" or "id" as the identifier, string or
// numeric, and treats a missing or null size as zero.
package videoapi
