// Command reelsmith generates narrated educational videos: it scripts a
// storyboard with an LLM, renders scenes, synthesizes narration, and
// assembles the final MP4.
package main
