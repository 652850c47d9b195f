package server

// DemoPage is the board served when no page is configured: three columns
// of cards using the default selectors.
const DemoPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>dragsort</title>
<style>
.dragging { opacity: 0.6; }
.hovering { outline: 2px dashed #888; }
.drop-here { height: 4px; background: #4a90d9; }
</style>
</head>
<body>
<div id="board" style="display: flex; width: 900px">
  <div id="todo" data-dropzone style="width: 300px; height: 400px; padding: 8px">
    <div id="card-1" data-draggable style="height: 60px; background: #fff4c2">Write the parser</div>
    <div id="card-2" data-draggable style="height: 60px; background: #fff4c2">Review layout</div>
    <div id="card-3" data-draggable style="height: 60px; background: #fff4c2">Ship it</div>
  </div>
  <div id="doing" data-dropzone style="width: 300px; height: 400px; padding: 8px">
    <div id="card-4" data-draggable style="height: 60px; background: #c2e7ff">Tune slots</div>
  </div>
  <div id="done" data-dropzone style="width: 300px; height: 400px; padding: 8px"></div>
</div>
</body>
</html>
`
